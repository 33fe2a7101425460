package dispositivos

import (
	"bytes"
	"sync"
)

// Archivo es un canal respaldado por una imagen en memoria con un cursor
// compartido. Nunca bloquea: al final del archivo Leer devuelve 0.
type Archivo struct {
	mu     sync.Mutex
	datos  []byte
	cursor int
}

func NuevoArchivo(contenido []byte) *Archivo {
	return &Archivo{datos: bytes.Clone(contenido)}
}

func (a *Archivo) Leer(buf []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := copy(buf, a.datos[a.cursor:])
	a.cursor += n
	return n, nil
}

// Escribir pisa desde el cursor y extiende el archivo si hace falta.
func (a *Archivo) Escribir(buf []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if fin := a.cursor + len(buf); fin > len(a.datos) {
		a.datos = append(a.datos, make([]byte, fin-len(a.datos))...)
	}
	n := copy(a.datos[a.cursor:], buf)
	a.cursor += n
	return n, nil
}

func (a *Archivo) Bloqueante() bool { return false }

// Rebobinar vuelve el cursor al principio.
func (a *Archivo) Rebobinar() {
	a.mu.Lock()
	a.cursor = 0
	a.mu.Unlock()
}

func (a *Archivo) Contenido() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return bytes.Clone(a.datos)
}
