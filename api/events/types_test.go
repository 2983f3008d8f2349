// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/stakeline"
)

func TestParseFilter(t *testing.T) {
	req := httptest.NewRequest("GET", "/events", nil)
	filter, err := parseFilter(req, 50)
	require.NoError(t, err)
	assert.Nil(t, filter.CriteriaSet)
	assert.Nil(t, filter.Range)
	assert.Equal(t, eventdb.ASC, filter.Order)
	assert.Equal(t, uint64(50), filter.Options.Limit)
	assert.Equal(t, uint64(0), filter.Options.Offset)

	addr := stakeline.MustParseAddress("0x0123456789012345678901234567890123456789")
	req = httptest.NewRequest("GET", "/events?kind=claimed&account="+addr.String(), nil)
	filter, err = parseFilter(req, 50)
	require.NoError(t, err)
	require.Len(t, filter.CriteriaSet, 1)
	assert.Equal(t, eventdb.Claimed, *filter.CriteriaSet[0].Kind)
	assert.Equal(t, addr, *filter.CriteriaSet[0].Account)

	req = httptest.NewRequest("GET", "/events?from=5", nil)
	filter, err = parseFilter(req, 50)
	require.NoError(t, err)
	require.NotNil(t, filter.Range)
	assert.Equal(t, eventdb.Sequence, filter.Range.Unit)
	assert.Equal(t, uint64(5), filter.Range.From)
	assert.Equal(t, uint64(math.MaxUint64), filter.Range.To)

	req = httptest.NewRequest("GET", "/events?unit=time&to=7", nil)
	filter, err = parseFilter(req, 50)
	require.NoError(t, err)
	require.NotNil(t, filter.Range)
	assert.Equal(t, eventdb.Time, filter.Range.Unit)
	assert.Equal(t, uint64(0), filter.Range.From)
	assert.Equal(t, uint64(7), filter.Range.To)

	req = httptest.NewRequest("GET", "/events?order=desc&offset=3&limit=10", nil)
	filter, err = parseFilter(req, 50)
	require.NoError(t, err)
	assert.Equal(t, eventdb.DESC, filter.Order)
	assert.Equal(t, uint64(3), filter.Options.Offset)
	assert.Equal(t, uint64(10), filter.Options.Limit)
}
