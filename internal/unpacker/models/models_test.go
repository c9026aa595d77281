package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	r := &Report{}
	r.Add(Outcome{Resource: "asmz://ns/a/z", Identity: "A", Path: "out/A.dll"})
	r.Add(Outcome{Resource: "asmz://bad", Err: errors.New("malformed")})

	inner := &Report{}
	inner.Add(Outcome{Resource: "asmz://ns/b/", Depth: 1, Identity: "B", Path: "out/B.dll"})
	r.Merge(inner)
	r.Merge(nil)

	assert.Len(t, r.Outcomes, 3)

	written := r.Written()
	if assert.Len(t, written, 2) {
		assert.Equal(t, "A", written[0].Identity)
		assert.Equal(t, 1, written[1].Depth)
	}

	skipped := r.Skipped()
	if assert.Len(t, skipped, 1) {
		assert.Equal(t, "asmz://bad", skipped[0].Resource)
	}
}

func TestReport_Empty(t *testing.T) {
	r := &Report{}
	assert.Empty(t, r.Written())
	assert.Empty(t, r.Skipped())
}
