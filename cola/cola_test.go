package cola

import (
	"errors"
	"slices"
	"testing"

	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

func memoriaDePrueba(t *testing.T, paginas uint64) *memoria.Memoria {
	t.Helper()
	m, err := memoria.Nueva([]memoria.Region{
		{Base: 0x100000, Largo: paginas * memoria.TamPagina, Tipo: memoria.RegionUsable},
	}, 0)
	if err != nil {
		t.Fatalf("memoria.Nueva: %v", err)
	}
	return m
}

func contenido[T comparable](c *Cola[T]) []T {
	return slices.Collect(c.Todos())
}

type item struct {
	clave int
	id    string
}

func porClave(a, b *item) int { return a.clave - b.clave }

func TestColaFIFO(t *testing.T) {
	c, err := Nueva[string](memoriaDePrueba(t, 4), nil)
	if err != nil {
		t.Fatalf("Nueva: %v", err)
	}

	for _, s := range []string{"a", "b", "c"} {
		if err := c.Encolar(s); err != nil {
			t.Fatalf("Encolar(%s): %v", s, err)
		}
	}
	if c.Largo() != 3 {
		t.Fatalf("largo %d, esperaba 3", c.Largo())
	}
	if f, _ := c.Frente(); f != "a" {
		t.Fatalf("frente %q, esperaba a", f)
	}

	for _, want := range []string{"a", "b", "c"} {
		got, ok := c.Desencolar()
		if !ok || got != want {
			t.Fatalf("Desencolar = %q,%v; esperaba %q", got, ok, want)
		}
	}
	if _, ok := c.Desencolar(); ok {
		t.Fatalf("la cola deberia estar vacia")
	}
	if _, ok := c.Frente(); ok || c.Largo() != 0 || c.cabeza != nulo || c.cola != nulo {
		t.Fatalf("cola vacia inconsistente: largo=%d cabeza=%d cola=%d", c.Largo(), c.cabeza, c.cola)
	}
}

func TestColaOrdenadaEstableEnEmpates(t *testing.T) {
	c, _ := Nueva[*item](memoriaDePrueba(t, 8), porClave)

	entradas := []*item{
		{5, "a"}, {1, "b"}, {5, "c"}, {3, "d"}, {1, "e"}, {9, "f"}, {3, "g"},
	}
	for _, it := range entradas {
		c.Encolar(it)
	}

	var ids string
	for c.Largo() > 0 {
		it, _ := c.Desencolar()
		ids += it.id
	}
	if ids != "bedgacf" {
		t.Fatalf("orden %q, esperaba bedgacf", ids)
	}
}

func TestColaOrdenadaSiempreDaElMinimo(t *testing.T) {
	c, _ := Nueva[int](memoriaDePrueba(t, 16), func(a, b int) int { return a - b })
	claves := []int{42, 7, 19, 7, 0, 100, 3, 19, 55, 1}
	for _, k := range claves {
		c.Encolar(k)
	}

	ordenadas := slices.Clone(claves)
	slices.Sort(ordenadas)
	if got := contenido(c); !slices.Equal(got, ordenadas) {
		t.Fatalf("contenido %v, esperaba %v", got, ordenadas)
	}

	// intercalar nuevas inserciones con extracciones
	c.Desencolar()
	c.Encolar(2)
	if f, _ := c.Frente(); f != 1 {
		t.Fatalf("frente %d, esperaba 1", f)
	}
}

func TestQuitarDelMedio(t *testing.T) {
	c, _ := Nueva[int](memoriaDePrueba(t, 4), nil)
	for i := 1; i <= 5; i++ {
		c.Encolar(i)
	}

	tests := []struct {
		quitar int
		ok     bool
		queda  []int
	}{
		{3, true, []int{1, 2, 4, 5}},
		{1, true, []int{2, 4, 5}},
		{5, true, []int{2, 4}},
		{7, false, []int{2, 4}},
		{2, true, []int{4}},
		{4, true, nil},
	}
	for _, tt := range tests {
		got, ok := c.Quitar(tt.quitar)
		if ok != tt.ok || (ok && got != tt.quitar) {
			t.Fatalf("Quitar(%d) = %d,%v", tt.quitar, got, ok)
		}
		if q := contenido(c); !slices.Equal(q, tt.queda) {
			t.Fatalf("despues de Quitar(%d) queda %v, esperaba %v", tt.quitar, q, tt.queda)
		}
		if c.Largo() != len(tt.queda) {
			t.Fatalf("largo %d, esperaba %d", c.Largo(), len(tt.queda))
		}
	}
	if c.cabeza != nulo || c.cola != nulo {
		t.Fatalf("cabeza y cola deberian quedar nulas")
	}
}

func TestQuitarNoLiberaElDato(t *testing.T) {
	c, _ := Nueva[*item](memoriaDePrueba(t, 4), nil)
	x := &item{clave: 1, id: "x"}
	c.Encolar(x)
	got, _ := c.Quitar(x)
	if got != x || x.id != "x" {
		t.Fatalf("el dato no deberia modificarse")
	}
}

func TestIteradorNoModifica(t *testing.T) {
	c, _ := Nueva[int](memoriaDePrueba(t, 4), nil)
	for i := range 4 {
		c.Encolar(i * 10)
	}

	var vistos []int
	for it := c.Iterar(); !it.Fin(); it.Avanzar() {
		vistos = append(vistos, it.Actual())
	}
	if !slices.Equal(vistos, []int{0, 10, 20, 30}) || c.Largo() != 4 {
		t.Fatalf("recorrido %v, largo %d", vistos, c.Largo())
	}
	if !c.Contiene(20) || c.Contiene(25) {
		t.Fatalf("Contiene devolvio algo incorrecto")
	}
}

func TestNodosUsanSlices(t *testing.T) {
	m := memoriaDePrueba(t, 4)
	c, _ := Nueva[int](m, nil)
	if m.Estadisticas().SlicesEnUso != 1 {
		t.Fatalf("la cabecera deberia ocupar un slice")
	}

	for i := range 6 {
		c.Encolar(i)
	}
	if got := m.Estadisticas().SlicesEnUso; got != 7 {
		t.Fatalf("slices en uso %d, esperaba 7", got)
	}

	c.Desencolar()
	c.Quitar(3)
	if got := m.Estadisticas().SlicesEnUso; got != 5 {
		t.Fatalf("slices en uso %d, esperaba 5", got)
	}

	c.Liberar()
	if got := m.Estadisticas().SlicesEnUso; got != 0 {
		t.Fatalf("despues de Liberar quedaron %d slices en uso", got)
	}
}

// asignadorLimitado entrega a lo sumo n slices.
type asignadorLimitado struct {
	n, usados int
}

func (a *asignadorLimitado) AsignarSlice() (memoria.Slice, error) {
	if a.usados == a.n {
		return memoria.Slice{}, memoria.ErrSinMemoria
	}
	a.usados++
	return memoria.Slice{Base: memoria.Direccion(a.usados * memoria.TamSlice)}, nil
}

func (a *asignadorLimitado) LiberarSlice(memoria.Slice) { a.usados-- }

func TestEncolarSinEspacio(t *testing.T) {
	a := &asignadorLimitado{n: 3}
	c, err := Nueva[int](a, nil)
	if err != nil {
		t.Fatalf("Nueva: %v", err)
	}
	c.Encolar(1)
	c.Encolar(2)

	if err := c.Encolar(3); !errors.Is(err, ErrSinEspacio) {
		t.Fatalf("esperaba ErrSinEspacio, obtuve %v", err)
	}
	if got := contenido(c); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("la cola no deberia cambiar ante un fallo: %v", got)
	}

	c.Desencolar()
	if err := c.Encolar(3); err != nil {
		t.Fatalf("con un nodo libre deberia poder encolar: %v", err)
	}
}

func TestNuevaSinEspacio(t *testing.T) {
	_, err := Nueva[int](&asignadorLimitado{n: 0}, nil)
	if !errors.Is(err, ErrSinEspacio) {
		t.Fatalf("esperaba ErrSinEspacio, obtuve %v", err)
	}
}
