// Package programas tiene los programas de usuario que trae el sistema:
// init, el ocioso y algunos de demostracion, registrados por nombre.
package programas

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
)

var registro = map[string]kernel.Programa{}

func registrar(nombre string, entrada kernel.Entrada) kernel.Programa {
	p := kernel.Programa{Nombre: nombre, Entrada: entrada}
	registro[nombre] = p
	return p
}

var (
	Escritor = registrar("escritor", escritor)
	Dormilon = registrar("dormilon", dormilon)
	Eco      = registrar("eco", eco)
	Familia  = registrar("familia", familia)
)

// Ocioso no se registra: lo crea el kernel al arrancar y la CPU nunca lo
// ejecuta, el procesador simplemente queda detenido.
var Ocioso = kernel.Programa{Nombre: "ocioso", Entrada: ocioso}

func Buscar(nombre string) (kernel.Programa, bool) {
	p, ok := registro[nombre]
	return p, ok
}

func Nombres() []string {
	return slices.Sorted(maps.Keys(registro))
}

func ocioso(kernel.Sistema, int, []string) int32 {
	select {}
}

// argumento devuelve argv[i] como entero, o porDefecto si falta o es invalido.
func argumento(argv []string, i int, porDefecto int) int {
	if i >= len(argv) {
		return porDefecto
	}
	n, err := strconv.Atoi(argv[i])
	if err != nil {
		slog.Warn("Argumento invalido, se usa el valor por defecto", "argumento", argv[i], "defecto", porDefecto)
		return porDefecto
	}
	return n
}

func codigoDe(err error) int32 {
	var c kernel.Codigo
	if errors.As(err, &c) {
		return int32(c)
	}
	return int32(kernel.ErrFallo)
}
