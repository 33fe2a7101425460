// Package cola implementa las listas de espera del nucleo: una cola generica
// FIFO u ordenada por un comparador, cuyos nodos salen del asignador de slices.
//
// La cola guarda referencias debiles: sacar un elemento nunca libera lo que
// apunta.
package cola

import (
	"errors"
	"iter"

	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

var ErrSinEspacio = errors.New("cola: no hay espacio para otro nodo")

// Comparador devuelve un valor negativo si a va antes que b, cero si son
// equivalentes y positivo si a va despues.
type Comparador[T any] func(a, b T) int

// AsignadorSlices es la parte de memoria.Memoria que usan las colas.
type AsignadorSlices interface {
	AsignarSlice() (memoria.Slice, error)
	LiberarSlice(memoria.Slice)
}

const nulo = -1

type nodo[T any] struct {
	dato     T
	sig, ant int
	slice    memoria.Slice
}

type Cola[T comparable] struct {
	mem      AsignadorSlices
	comparar Comparador[T]
	cabecera memoria.Slice

	nodos  []nodo[T]
	libres []int // indices de nodos reutilizables
	cabeza int
	cola   int
	largo  int
}

// Nueva reserva la cabecera de la cola. Con comparar nil la cola es FIFO.
func Nueva[T comparable](mem AsignadorSlices, comparar Comparador[T]) (*Cola[T], error) {
	cabecera, err := mem.AsignarSlice()
	if err != nil {
		return nil, errors.Join(ErrSinEspacio, err)
	}
	return &Cola[T]{
		mem:      mem,
		comparar: comparar,
		cabecera: cabecera,
		cabeza:   nulo,
		cola:     nulo,
	}, nil
}

// Liberar devuelve al asignador la cabecera y los nodos que queden. Los
// datos no se tocan.
func (c *Cola[T]) Liberar() {
	for i := c.cabeza; i != nulo; i = c.nodos[i].sig {
		c.mem.LiberarSlice(c.nodos[i].slice)
	}
	c.mem.LiberarSlice(c.cabecera)
	c.nodos, c.libres = nil, nil
	c.cabeza, c.cola, c.largo = nulo, nulo, 0
}

func (c *Cola[T]) Largo() int { return c.largo }

func (c *Cola[T]) Ordenada() bool { return c.comparar != nil }

func (c *Cola[T]) nuevoNodo(x T) (int, error) {
	s, err := c.mem.AsignarSlice()
	if err != nil {
		return nulo, ErrSinEspacio
	}
	n := nodo[T]{dato: x, sig: nulo, ant: nulo, slice: s}
	if k := len(c.libres); k > 0 {
		i := c.libres[k-1]
		c.libres = c.libres[:k-1]
		c.nodos[i] = n
		return i, nil
	}
	c.nodos = append(c.nodos, n)
	return len(c.nodos) - 1, nil
}

func (c *Cola[T]) soltarNodo(i int) T {
	n := c.nodos[i]
	c.mem.LiberarSlice(n.slice)
	var cero T
	c.nodos[i] = nodo[T]{dato: cero, sig: nulo, ant: nulo}
	c.libres = append(c.libres, i)
	return n.dato
}

// Encolar agrega x al final, o en orden si la cola tiene comparador: queda
// detras de todos los elementos que comparan menor o igual.
func (c *Cola[T]) Encolar(x T) error {
	i, err := c.nuevoNodo(x)
	if err != nil {
		return err
	}

	// siguiente es el nodo delante del cual va x
	siguiente := nulo
	if c.comparar != nil {
		for j := c.cabeza; j != nulo; j = c.nodos[j].sig {
			if c.comparar(c.nodos[j].dato, x) > 0 {
				siguiente = j
				break
			}
		}
	}

	if siguiente == nulo {
		c.nodos[i].ant = c.cola
		if c.cola != nulo {
			c.nodos[c.cola].sig = i
		} else {
			c.cabeza = i
		}
		c.cola = i
	} else {
		anterior := c.nodos[siguiente].ant
		c.nodos[i].sig = siguiente
		c.nodos[i].ant = anterior
		c.nodos[siguiente].ant = i
		if anterior != nulo {
			c.nodos[anterior].sig = i
		} else {
			c.cabeza = i
		}
	}
	c.largo++
	return nil
}

func (c *Cola[T]) desenlazar(i int) T {
	n := c.nodos[i]
	if n.ant != nulo {
		c.nodos[n.ant].sig = n.sig
	} else {
		c.cabeza = n.sig
	}
	if n.sig != nulo {
		c.nodos[n.sig].ant = n.ant
	} else {
		c.cola = n.ant
	}
	c.largo--
	return c.soltarNodo(i)
}

func (c *Cola[T]) Desencolar() (T, bool) {
	if c.cabeza == nulo {
		var cero T
		return cero, false
	}
	return c.desenlazar(c.cabeza), true
}

// Quitar saca la primera aparicion de x, este donde este.
func (c *Cola[T]) Quitar(x T) (T, bool) {
	for i := c.cabeza; i != nulo; i = c.nodos[i].sig {
		if c.nodos[i].dato == x {
			return c.desenlazar(i), true
		}
	}
	var cero T
	return cero, false
}

func (c *Cola[T]) Frente() (T, bool) {
	if c.cabeza == nulo {
		var cero T
		return cero, false
	}
	return c.nodos[c.cabeza].dato, true
}

func (c *Cola[T]) Contiene(x T) bool {
	for y := range c.Todos() {
		if y == x {
			return true
		}
	}
	return false
}

// Todos recorre la cola de la cabeza a la cola sin modificarla.
func (c *Cola[T]) Todos() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := c.Iterar(); !it.Fin(); it.Avanzar() {
			if !yield(it.Actual()) {
				return
			}
		}
	}
}
