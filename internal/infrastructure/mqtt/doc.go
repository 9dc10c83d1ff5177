// Package mqtt provides MQTT broker connectivity for the station driver.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - The single topic subscription with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The driver holds exactly one persistent session and one subscription.
// Messages arrive on paho's network goroutine and are handed to the
// registered MessageHandler; the handler must not block.
//
//	Weather sensors → rtl_433/gateway → MQTT Broker → station driver
//
// # Security Considerations
//
//   - TLS is recommended for anything beyond a LAN broker (broker.tls=true)
//   - A custom CA file can be supplied via broker.cert_path for
//     self-signed broker certificates
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(cfg.Subscription.Topic, byte(cfg.Subscription.QoS),
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
