package dispositivos

import (
	"io"
	"sync"
)

// Consola escribe en una salida y lee lo que se tipea. Las lecturas
// bloquean hasta que haya teclas.
type Consola struct {
	entrada

	muSalida sync.Mutex
	salida   io.Writer
}

func NuevaConsola(salida io.Writer) *Consola {
	return &Consola{salida: salida}
}

func (c *Consola) Leer(buf []byte) (int, error) { return c.leer(buf) }

func (c *Consola) Escribir(buf []byte) (int, error) {
	c.muSalida.Lock()
	defer c.muSalida.Unlock()
	return c.salida.Write(buf)
}

func (c *Consola) Bloqueante() bool { return true }

// Teclear carga teclas como si vinieran del teclado.
func (c *Consola) Teclear(teclas []byte) { c.cargar(teclas) }

// Pendientes es lo tipeado que todavia no se leyo.
func (c *Consola) Pendientes() int { return c.pendientes() }
