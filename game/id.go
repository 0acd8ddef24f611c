// a fast unique time-based ID algorithm from the mongo mgo driver
package game

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"lukechampine.com/frand"
)

// ID tags each game for logging. The layout is that of a bson ObjectId:
// timestamp, machine, pid, counter.
type ID string

func (id ID) String() string {
	return fmt.Sprintf("%x", string(id))
}

// Time returns the timestamp part of the id.
func (id ID) Time() time.Time {
	if len(id) != 12 {
		return time.Time{}
	}
	secs := int64(binary.BigEndian.Uint32([]byte(string(id)[0:4])))
	return time.Unix(secs, 0)
}

var idCounter atomic.Uint32

var machineID [3]byte

// initMachineID hashes the hostname, or falls back to random bytes when
// there is none.
func initMachineID() {
	hostname, err := os.Hostname()
	if err != nil {
		frand.Read(machineID[:])
		return
	}
	sum := md5.Sum([]byte(hostname))
	copy(machineID[:], sum[:3])
}

func init() {
	initMachineID()
	idCounter.Store(uint32(frand.Uint64n(1 << 24)))
}

func newID() ID {
	b := make([]byte, 12)
	// Timestamp, 4 bytes, big endian
	binary.BigEndian.PutUint32(b, uint32(time.Now().Unix()))
	copy(b[4:7], machineID[:])
	// Pid, 2 bytes, big endian
	pid := os.Getpid()
	b[7] = byte(pid >> 8)
	b[8] = byte(pid)
	// Increment, 3 bytes, big endian
	i := idCounter.Add(1)
	b[9] = byte(i >> 16)
	b[10] = byte(i >> 8)
	b[11] = byte(i)
	return ID(b)
}
