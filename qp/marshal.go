package qp

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/saddleopt/saddle"
	"github.com/saddleopt/saddle/logger"
)

// wireLog is SolveLog stripped of its BinaryMarshaler implementation, so
// the cbor codec reads and writes the struct fields instead of re-entering
// MarshalBinary.
type wireLog SolveLog

// MarshalBinary serializes the log with deterministic CBOR encoding. An
// empty Version is stamped with the running library version first.
func (l SolveLog) MarshalBinary() ([]byte, error) {
	if l.Version == "" {
		l.Version = saddle.Version.String()
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	data, err := em.Marshal(wireLog(l))
	if err != nil {
		return nil, fmt.Errorf("encoding solve log: %w", err)
	}
	return data, nil
}

// UnmarshalSolveLog decodes a log serialized by MarshalBinary.
//
// The embedded version must parse; a version that differs from the running
// library logs a warning but still decodes, since the log is diagnostic
// data.
func UnmarshalSolveLog(data []byte) (SolveLog, error) {
	dm, err := cbor.DecOptions{
		MaxArrayElements: 2147483647,
		MaxMapPairs:      2147483647,
	}.DecMode()
	if err != nil {
		return SolveLog{}, err
	}

	var w wireLog
	if err := dm.Unmarshal(data, &w); err != nil {
		return SolveLog{}, fmt.Errorf("decoding solve log: %w", err)
	}
	l := SolveLog(w)

	binaryVersion := saddle.Version
	objectVersion, err := semver.Parse(l.Version)
	if err != nil {
		return SolveLog{}, fmt.Errorf("when parsing solve log version: %w", err)
	}
	if binaryVersion.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", binaryVersion.String()).Str("object", objectVersion.String()).Msg("library version (binary) mismatch with solve log. there are no guarantees on compatibility")
	}

	return l, nil
}
