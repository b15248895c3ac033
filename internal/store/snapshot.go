package store

import (
	"encoding/json"

	"github.com/perfsight/cgviewer/pkg/compression"
)

// SnapshotFunction is the JSON shape of one ranked function inside a
// compressed call-graph snapshot.
type SnapshotFunction struct {
	Symbol    string   `json:"symbol"`
	Object    string   `json:"object"`
	Source    string   `json:"source"`
	TotalCost []uint64 `json:"total_cost"`
}

// EncodeSnapshot marshals functions to JSON and compresses the result with
// the default compressor (zstd, falling back to gzip), so that ingest
// sessions can keep a compact copy of their ranked call graph without
// re-parsing the original dump.
func EncodeSnapshot(functions []SnapshotFunction) ([]byte, error) {
	data, err := json.Marshal(functions)
	if err != nil {
		return nil, err
	}

	comp := compression.Default()
	defer compression.Close(comp)

	return comp.Compress(data)
}

// DecodeSnapshot reverses EncodeSnapshot, auto-detecting whether the blob
// was compressed with zstd or gzip.
func DecodeSnapshot(blob []byte) ([]SnapshotFunction, error) {
	if len(blob) == 0 {
		return nil, nil
	}

	data, err := compression.AutoDecompress(blob)
	if err != nil {
		return nil, err
	}

	var functions []SnapshotFunction
	if err := json.Unmarshal(data, &functions); err != nil {
		return nil, err
	}
	return functions, nil
}
