// Package dispositivos tiene los colaboradores de E/S que atienden los
// canales del kernel: consola, linea serie y archivo.
package dispositivos

import (
	"sync"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
)

// entrada es un buffer de bytes recibidos que todavia nadie leyo. Se carga
// desde afuera del kernel (teclado, linea serie) y se consume en Leer.
type entrada struct {
	mu     sync.Mutex
	datos  []byte
	avisar func()
}

func (e *entrada) leer(buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.datos) == 0 {
		return 0, kernel.ErrSinDatos
	}
	n := copy(buf, e.datos)
	e.datos = e.datos[n:]
	return n, nil
}

// cargar agrega los bytes y dispara la interrupcion, ya sin el lock tomado
// porque el kernel va a volver a leer.
func (e *entrada) cargar(b []byte) {
	if len(b) == 0 {
		return
	}
	e.mu.Lock()
	e.datos = append(e.datos, b...)
	avisar := e.avisar
	e.mu.Unlock()

	if avisar != nil {
		avisar()
	}
}

func (e *entrada) pendientes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.datos)
}

// AvisarEntrada registra la interrupcion del dispositivo.
func (e *entrada) AvisarEntrada(f func()) {
	e.mu.Lock()
	e.avisar = f
	e.mu.Unlock()
}
