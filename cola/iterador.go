package cola

// Iterador recorre una cola sin modificarla. Asume que nadie encola ni saca
// elementos mientras se recorre.
type Iterador[T comparable] struct {
	c *Cola[T]
	i int
}

// Iterar arranca un recorrido desde la cabeza.
func (c *Cola[T]) Iterar() *Iterador[T] {
	return &Iterador[T]{c: c, i: c.cabeza}
}

func (it *Iterador[T]) Fin() bool { return it.i == nulo }

func (it *Iterador[T]) Actual() T {
	if it.i == nulo {
		var cero T
		return cero
	}
	return it.c.nodos[it.i].dato
}

func (it *Iterador[T]) Avanzar() {
	if it.i != nulo {
		it.i = it.c.nodos[it.i].sig
	}
}
