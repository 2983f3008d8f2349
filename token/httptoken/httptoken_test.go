// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httptoken

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineax/stakeline/test/datagen"
)

func TestClient_MoveFrom(t *testing.T) {
	from := datagen.RandAddress()
	to := datagen.RandAddress()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req transferRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, from, req.From)
		assert.Equal(t, to, req.To)
		assert.Equal(t, big.NewInt(125), (*big.Int)(req.Amount))

		json.NewEncoder(w).Encode(&transferResult{Ok: true})
	}))
	defer ts.Close()

	client := New(ts.URL, datagen.RandAddress(), time.Second)
	ok, err := client.MoveFrom(context.Background(), from, to, big.NewInt(125))

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_MoveFromRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(&transferResult{Ok: false})
	}))
	defer ts.Close()

	client := New(ts.URL, datagen.RandAddress(), time.Second)
	ok, err := client.MoveFrom(context.Background(), datagen.RandAddress(), datagen.RandAddress(), big.NewInt(1))

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_MoveTo(t *testing.T) {
	account := datagen.RandAddress()
	to := datagen.RandAddress()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, account, req.From, "MoveTo must send from the client's own account")
		assert.Equal(t, to, req.To)

		json.NewEncoder(w).Encode(&transferResult{Ok: true})
	}))
	defer ts.Close()

	client := New(ts.URL, account, time.Second)
	ok, err := client.MoveTo(context.Background(), to, big.NewInt(9))

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_BalanceOf(t *testing.T) {
	account := datagen.RandAddress()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/"+account.String()+"/balance", r.URL.Path)

		json.NewEncoder(w).Encode(&balanceResult{Balance: (*math.HexOrDecimal256)(big.NewInt(987))})
	}))
	defer ts.Close()

	client := New(ts.URL, datagen.RandAddress(), time.Second)
	bal, err := client.BalanceOf(context.Background(), account)

	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(987), bal)
}

func TestClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := New(ts.URL, datagen.RandAddress(), time.Second)

	_, err := client.MoveFrom(context.Background(), datagen.RandAddress(), datagen.RandAddress(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrNot200Status)

	_, err = client.BalanceOf(context.Background(), datagen.RandAddress())
	assert.ErrorIs(t, err, ErrNot200Status)
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(&transferResult{Ok: true})
	}))
	defer ts.Close()

	client := New(ts.URL, datagen.RandAddress(), 10*time.Millisecond)
	ok, err := client.MoveFrom(context.Background(), datagen.RandAddress(), datagen.RandAddress(), big.NewInt(1))

	assert.Error(t, err)
	assert.False(t, ok)
}
