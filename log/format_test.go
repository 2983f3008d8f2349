// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"errors"
	"io"
	"log/slog"
	"math/big"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestAppendUint64(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{99999, "99999"},
		{100000, "100,000"},
		{1234567890, "1,234,567,890"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(appendUint64(nil, tt.n, false)))
	}
}

func TestAppendInt64(t *testing.T) {
	assert.Equal(t, "-42", string(appendInt64(nil, -42)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1000000)))
	assert.Equal(t, "7,654,321", string(appendInt64(nil, 7654321)))
}

func TestEscapeMessage(t *testing.T) {
	assert.Equal(t, "pool updated", escapeMessage("pool updated"))
	// CR/LF/TAB pass through so multi-line messages stay readable.
	assert.Equal(t, "line one\nline two", escapeMessage("line one\nline two"))
	assert.Equal(t, `"key=value"`, escapeMessage("key=value"))
}

func TestAppendEscapeString(t *testing.T) {
	assert.Equal(t, "plain", string(appendEscapeString(nil, "plain")))
	assert.Equal(t, `"two words"`, string(appendEscapeString(nil, "two words")))
	assert.Equal(t, `"tab\there"`, string(appendEscapeString(nil, "tab\there")))
}

func TestFormatSlogValue(t *testing.T) {
	assert.Equal(t, "1,234,567", string(FormatSlogValue(slog.Int64Value(1234567), nil)))
	assert.Equal(t, `"two words"`, string(FormatSlogValue(slog.StringValue("two words"), nil)))
	assert.Equal(t, "1000000", string(FormatSlogValue(slog.AnyValue(big.NewInt(1000000)), nil)))
	assert.Equal(t, "<nil>", string(FormatSlogValue(slog.AnyValue((*big.Int)(nil)), nil)))
	assert.Equal(t, "42", string(FormatSlogValue(slog.AnyValue(uint256.NewInt(42)), nil)))
	assert.Equal(t, "transfer failed", string(FormatSlogValue(slog.AnyValue(errors.New("transfer failed")), nil)))
}

func TestTerminalHandlerFormat(t *testing.T) {
	h := NewTerminalHandler(io.Discard, false)
	r := slog.NewRecord(time.Date(2025, 8, 25, 10, 20, 30, 0, time.UTC), slog.LevelInfo, "pool updated", 0)
	r.Add("amount", uint64(1234567))

	want := "INFO [08-25|10:20:30.000] pool updated" + strings.Repeat(" ", 28) + " amount=1,234,567\n"
	assert.Equal(t, want, string(h.format(nil, r, false)))
}

var sink []byte

func BenchmarkAppendInt64(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendInt64(buf, rand.Int64()) //#nosec G404
	}
}

func BenchmarkAppendUint64(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendUint64(buf, rand.Uint64(), false) //#nosec G404
	}
}
