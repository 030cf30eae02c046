// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/jokester/jokester/pkg/errutil"
)

// recordingT records failures instead of failing the wrapped test.
type recordingT struct {
	testing.TB
	failed bool
}

func (r *recordingT) Helper()               {}
func (r *recordingT) Errorf(string, ...any) { r.failed = true }
func (r *recordingT) FailNow()              { r.failed = true }

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorCode_InnermostCodeWins(t *testing.T) {
	inner := oops.Code("INNER").Errorf("test error")
	rec := &recordingT{TB: t}
	errutil.AssertErrorCode(rec, oops.Code("OUTER").Wrap(inner), "OUTER")
	assert.True(t, rec.failed)

	errutil.AssertErrorCode(t, oops.Code("OUTER").Wrap(inner), "INNER")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", "123").Errorf("test error")
	errutil.AssertErrorContext(t, err, "user_id", "123")
}

func TestAssertCodedSentinel(t *testing.T) {
	errGone := errors.New("gone")
	errOther := errors.New("other")
	err := oops.Code("THING_GONE").With("id", 7).Wrap(errGone)

	errutil.AssertCodedSentinel(t, err, errGone, "THING_GONE")

	tests := []struct {
		name     string
		sentinel error
		code     string
	}{
		{name: "wrong sentinel", sentinel: errOther, code: "THING_GONE"},
		{name: "wrong code", sentinel: errGone, code: "THING_MISSING"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingT{TB: t}
			errutil.AssertCodedSentinel(rec, err, tt.sentinel, tt.code)
			assert.True(t, rec.failed)
		})
	}
}
