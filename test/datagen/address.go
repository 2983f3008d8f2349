// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/lineax/stakeline/stakeline"
)

func RandAddress() stakeline.Address {
	var addr stakeline.Address

	rand.Read(addr[:])
	return addr
}
