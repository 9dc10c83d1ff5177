package station

// FieldMap resolves an output field name to the source key holding its
// value in the decoded payload.
type FieldMap map[string]string

// MappingTable resolves a device model identifier to its field mapping.
// Immutable after construction; looked up by model on every message.
type MappingTable map[string]FieldMap

// NewMappingTable builds a MappingTable from configuration.
//
// The input is copied so later mutation of the config structure cannot
// change the table.
func NewMappingTable(mappings map[string]map[string]string) MappingTable {
	table := make(MappingTable, len(mappings))
	for model, fields := range mappings {
		fm := make(FieldMap, len(fields))
		for outField, sourceKey := range fields {
			fm[outField] = sourceKey
		}
		table[model] = fm
	}
	return table
}

// Lookup returns the field mapping for a model, reporting whether the
// model is known.
func (t MappingTable) Lookup(model string) (FieldMap, bool) {
	fields, ok := t[model]
	return fields, ok
}
