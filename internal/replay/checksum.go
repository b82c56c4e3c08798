package replay

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"
)

// Checksum returns the hex blake2b-256 digest of the snapshots. Floats are
// hashed by bit pattern, so any drift shows up.
func Checksum(entities []EntitySnapshot) string {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	var buf [4 + 6*8 + 1]byte
	for _, e := range entities {
		binary.LittleEndian.PutUint32(buf[0:], uint32(e.ID))
		for i, f := range [6]float64{
			e.Position.X, e.Position.Y, e.Position.Z,
			e.Velocity.VX, e.Velocity.VY, e.Velocity.VZ,
		} {
			binary.LittleEndian.PutUint64(buf[4+i*8:], math.Float64bits(f))
		}
		buf[len(buf)-1] = 0
		if e.HasVelocity {
			buf[len(buf)-1] = 1
		}
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
