package sen5x

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Transport runs one exclusive bus transaction: write w, wait delay, then
// read into r. It returns the number of bytes read.
type Transport interface {
	Transact(w []byte, delay time.Duration, r []byte) (int, error)
}

// I2CTransport is a Transport over a periph.io I2C bus.
type I2CTransport struct {
	mu    sync.Mutex
	dev   *i2c.Dev
	sleep func(time.Duration)
}

// NewI2CTransport binds the device at addr on bus.
func NewI2CTransport(bus i2c.Bus, addr uint16) *I2CTransport {
	return &I2CTransport{
		dev:   &i2c.Dev{Bus: bus, Addr: addr},
		sleep: time.Sleep,
	}
}

// Transact implements Transport. The write and the read are separate I2C
// transfers because the device needs its execution time between them.
func (t *I2CTransport) Transact(w []byte, delay time.Duration, r []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(w) > 0 {
		if err := t.dev.Tx(w, nil); err != nil {
			return 0, err
		}
	}
	if delay > 0 {
		t.sleep(delay)
	}
	if len(r) == 0 {
		return 0, nil
	}
	if err := t.dev.Tx(nil, r); err != nil {
		return 0, err
	}
	return len(r), nil
}

func (t *I2CTransport) String() string {
	return t.dev.String()
}
