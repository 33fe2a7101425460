// Package memoria administra la memoria fisica del nucleo: una lista de
// bloques libres ordenada por direccion, con granularidad de pagina, y un
// asignador de slices (cuartos de pagina) para la metadata chica del kernel.
package memoria

import "errors"

type Direccion uint64

const (
	TamPagina = 4096
	TamSlice  = TamPagina / 4

	SlicesPorPagina = TamPagina / TamSlice

	// Techo es el limite de 4 GiB; lo que este por encima se ignora.
	Techo Direccion = 1 << 32
)

var (
	ErrSinMemoria      = errors.New("memoria: no hay paginas libres suficientes")
	ErrBloqueInvalido  = errors.New("memoria: bloque invalido o ya liberado")
	ErrTamanioInvalido = errors.New("memoria: tamanio de memoria invalido")
)

// Bloque describe una corrida de paginas contiguas.
type Bloque struct {
	Base    Direccion `json:"base"`
	Paginas uint32    `json:"paginas"`
}

func (b Bloque) Tamanio() uint64 { return uint64(b.Paginas) * TamPagina }

// Fin devuelve la primera direccion que ya no pertenece al bloque.
func (b Bloque) Fin() Direccion { return b.Base + Direccion(b.Tamanio()) }

type Slice struct {
	Base Direccion
}

type Estadisticas struct {
	PaginasTotales uint64 `json:"paginas_totales"`
	PaginasLibres  uint64 `json:"paginas_libres"`
	Bloques        int    `json:"bloques_libres"`
	SlicesEnUso    int    `json:"slices_en_uso"`
	SlicesLibres   int    `json:"slices_libres"`
}
