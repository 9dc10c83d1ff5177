// Package station implements the telemetry message pipeline at the heart
// of the driver.
//
// This package manages:
//   - The hand-off queue between the broker's network callback and the
//     host's polling loop
//   - Duplicate suppression with a time-bounded seen set
//   - Schema-driven mapping of vendor payload fields into normalized
//     sensor records
//
// # Architecture
//
//	broker callback → queue → NextRecord → parse/dedup/map → Record
//
// Exactly two execution contexts touch the pipeline: the paho network
// goroutine pushing raw messages, and the host's polling goroutine pulling
// records. The queue is the only structure shared between them; the seen
// set and mapping table live entirely on the consumer side.
//
// # Usage
//
//	driver, err := station.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	driver.SetLogger(logger)
//	if err := driver.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer driver.Stop()
//
//	for {
//	    rec, ok := driver.NextRecord(cfg.PollTimeout())
//	    if !ok {
//	        break
//	    }
//	    if rec != nil {
//	        emit(rec)
//	    }
//	}
package station
