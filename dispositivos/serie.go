package dispositivos

import (
	"bytes"
	"sync"
)

// Serie es una linea serie con buffers en los dos sentidos. Si no es
// bloqueante, leer sin datos devuelve kernel.ErrSinDatos al proceso.
type Serie struct {
	entrada

	bloqueante bool

	muSalida sync.Mutex
	salida   bytes.Buffer
}

func NuevaSerie(bloqueante bool) *Serie {
	return &Serie{bloqueante: bloqueante}
}

func (s *Serie) Leer(buf []byte) (int, error) { return s.leer(buf) }

func (s *Serie) Escribir(buf []byte) (int, error) {
	s.muSalida.Lock()
	defer s.muSalida.Unlock()
	return s.salida.Write(buf)
}

func (s *Serie) Bloqueante() bool { return s.bloqueante }

// Recibir simula bytes que llegan por la linea.
func (s *Serie) Recibir(b []byte) { s.cargar(b) }

// Transmitido devuelve y vacia lo que los procesos escribieron.
func (s *Serie) Transmitido() []byte {
	s.muSalida.Lock()
	defer s.muSalida.Unlock()
	b := bytes.Clone(s.salida.Bytes())
	s.salida.Reset()
	return b
}
