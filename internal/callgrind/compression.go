package callgrind

import "strconv"

// compressionTables holds the three independent alias->string mappings the
// format uses to avoid repeating long object/file/symbol names. They are
// never collapsed into one table: (fn, 1) and (ob, 1) are distinct.
type compressionTables struct {
	object map[uint64]string
	file   map[uint64]string
	symbol map[uint64]string
}

func newCompressionTables() *compressionTables {
	return &compressionTables{
		object: make(map[uint64]string),
		file:   make(map[uint64]string),
		symbol: make(map[uint64]string),
	}
}

// tableFor partitions axis keys to their table: ob -> object, fn -> symbol,
// fl/fi/fe -> the shared file table. Called-position keys are expected to
// already have their leading "c" stripped by the caller.
func (c *compressionTables) tableFor(key string) map[uint64]string {
	switch key {
	case "ob":
		return c.object
	case "fn":
		return c.symbol
	case "fl", "fi", "fe":
		return c.file
	default:
		return nil
	}
}

// resolve applies the compression/aliasing contract: if both alias
// index and value are present, the binding is installed and value is
// returned; if only the index is present, the table is consulted; if only
// value is present, it is returned directly with no table interaction.
func (c *compressionTables) resolve(key string, aliasIdx int, value string, line int, raw string) (string, error) {
	table := c.tableFor(key)
	if table == nil {
		return "", newParseError(KindUnknownPositionKey, line, raw, "unknown position key "+key)
	}

	switch {
	case aliasIdx >= 0 && value != "":
		// Write-once per axis: once (axis, index) names a value, a later
		// naming definition with the same index is a fatal error rather
		// than a silent overwrite.
		if existing, ok := table[uint64(aliasIdx)]; ok {
			return "", newParseError(KindAliasRedefined, line, raw, "alias "+key+"="+strconv.Itoa(aliasIdx)+" already bound to "+existing)
		}
		table[uint64(aliasIdx)] = value
		return value, nil
	case aliasIdx >= 0:
		v, ok := table[uint64(aliasIdx)]
		if !ok {
			return "", newParseError(KindMissingCompression, line, raw, "Cannot find compression from the cache")
		}
		return v, nil
	default:
		return value, nil
	}
}
