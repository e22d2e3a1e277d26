package migration

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cellgrid/autotune/internal/particle"
)

// recordSize is one serialised particle: id (8) + typeID (8) + ownership (1)
// + position/velocity/force (9 float64s, 8 bytes each).
const recordSize = 8 + 8 + 1 + 9*8

// EncodeParticles serialises ps into the wire format the migration
// collaborator exchanges between subdomains: id and typeID as little-endian
// uint64s, ownership as one byte, and every double (position, velocity,
// force) in the platform's native byte order. Used for both the emigrant
// and immigrant buffers.
func EncodeParticles(ps []particle.Particle) []byte {
	buf := make([]byte, 0, len(ps)*recordSize)
	for _, p := range ps {
		buf = appendParticle(buf, p)
	}
	return buf
}

func appendParticle(buf []byte, p particle.Particle) []byte {
	var rec [recordSize]byte
	binary.LittleEndian.PutUint64(rec[0:8], p.ID)
	binary.LittleEndian.PutUint64(rec[8:16], p.TypeID)
	rec[16] = byte(p.Ownership)

	off := 17
	putVec3Native(rec[off:off+24], p.Position)
	off += 24
	putVec3Native(rec[off:off+24], p.Velocity)
	off += 24
	putVec3Native(rec[off:off+24], p.Force)

	return append(buf, rec[:]...)
}

func putVec3Native(b []byte, v particle.Vec3) {
	for i := 0; i < 3; i++ {
		binary.NativeEndian.PutUint64(b[i*8:i*8+8], math.Float64bits(v[i]))
	}
}

func getVec3Native(b []byte) particle.Vec3 {
	var v particle.Vec3
	for i := 0; i < 3; i++ {
		v[i] = math.Float64frombits(binary.NativeEndian.Uint64(b[i*8 : i*8+8]))
	}
	return v
}

// DecodeParticles parses a buffer EncodeParticles produced. Returns an error
// if buf's length isn't a whole number of records.
func DecodeParticles(buf []byte) ([]particle.Particle, error) {
	if len(buf)%recordSize != 0 {
		return nil, fmt.Errorf("migration: buffer length %d is not a multiple of the %d-byte record size", len(buf), recordSize)
	}
	n := len(buf) / recordSize
	out := make([]particle.Particle, n)
	for i := 0; i < n; i++ {
		rec := buf[i*recordSize : (i+1)*recordSize]
		p := particle.Particle{
			ID:        binary.LittleEndian.Uint64(rec[0:8]),
			TypeID:    binary.LittleEndian.Uint64(rec[8:16]),
			Ownership: particle.OwnershipState(rec[16]),
		}
		off := 17
		p.Position = getVec3Native(rec[off : off+24])
		off += 24
		p.Velocity = getVec3Native(rec[off : off+24])
		off += 24
		p.Force = getVec3Native(rec[off : off+24])
		out[i] = p
	}
	return out, nil
}
