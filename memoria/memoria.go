package memoria

import (
	"fmt"
	"log/slog"
	"slices"
)

// Memoria es el asignador de paginas y slices. No es seguro para uso
// concurrente: el nucleo lo usa siempre con las interrupciones deshabilitadas.
type Memoria struct {
	libres       []Bloque // ordenados por Base, nunca adyacentes entre si
	totales      uint64
	slicesLibres []Slice
	slicesEnUso  int
}

// Nueva siembra la lista libre a partir del mapa de memoria del BIOS.
func Nueva(mapa []Region, cargaKernel Direccion) (*Memoria, error) {
	m := &Memoria{libres: bloquesDesdeMapa(mapa, cargaKernel)}
	if len(m.libres) == 0 {
		return nil, fmt.Errorf("mapa de memoria sin regiones usables: %w", ErrSinMemoria)
	}
	for _, b := range m.libres {
		m.totales += uint64(b.Paginas)
		slog.Debug("Region libre", "base", fmt.Sprintf("%#x", b.Base), "paginas", b.Paginas)
	}
	slog.Info("Memoria inicializada", "paginas", m.totales, "bloques", len(m.libres))
	return m, nil
}

// AsignarPaginas busca el primer bloque que alcance (first fit), corta el
// prefijo pedido y deja el resto en el mismo lugar de la lista.
func (m *Memoria) AsignarPaginas(cantidad uint32) (Bloque, error) {
	if cantidad == 0 {
		return Bloque{}, ErrBloqueInvalido
	}
	for i := range m.libres {
		libre := &m.libres[i]
		if libre.Paginas < cantidad {
			continue
		}
		asignado := Bloque{Base: libre.Base, Paginas: cantidad}
		if libre.Paginas == cantidad {
			m.libres = slices.Delete(m.libres, i, i+1)
		} else {
			libre.Base = asignado.Fin()
			libre.Paginas -= cantidad
		}
		return asignado, nil
	}
	return Bloque{}, ErrSinMemoria
}

// LiberarPaginas inserta el bloque en orden y lo une con el vecino anterior
// y/o siguiente cuando los rangos son contiguos.
func (m *Memoria) LiberarPaginas(b Bloque) error {
	if b.Paginas == 0 || b.Base%TamPagina != 0 {
		return ErrBloqueInvalido
	}

	// i es la posicion del primer bloque libre con base mayor a b
	i, _ := slices.BinarySearchFunc(m.libres, b.Base, func(l Bloque, base Direccion) int {
		switch {
		case l.Base < base:
			return -1
		case l.Base > base:
			return 1
		}
		return 0
	})

	if i < len(m.libres) && m.libres[i].Base < b.Fin() {
		return fmt.Errorf("%w: %#x se superpone con el bloque libre %#x", ErrBloqueInvalido, b.Base, m.libres[i].Base)
	}
	if i > 0 && m.libres[i-1].Fin() > b.Base {
		return fmt.Errorf("%w: %#x se superpone con el bloque libre %#x", ErrBloqueInvalido, b.Base, m.libres[i-1].Base)
	}

	pegadoAnterior := i > 0 && m.libres[i-1].Fin() == b.Base
	pegadoSiguiente := i < len(m.libres) && b.Fin() == m.libres[i].Base

	switch {
	case pegadoAnterior && pegadoSiguiente:
		m.libres[i-1].Paginas += b.Paginas + m.libres[i].Paginas
		m.libres = slices.Delete(m.libres, i, i+1)
	case pegadoAnterior:
		m.libres[i-1].Paginas += b.Paginas
	case pegadoSiguiente:
		m.libres[i].Base = b.Base
		m.libres[i].Paginas += b.Paginas
	default:
		m.libres = slices.Insert(m.libres, i, b)
	}
	return nil
}

// AsignarSlice devuelve un cuarto de pagina. Si no hay slices libres corta
// una pagina nueva en cuatro.
func (m *Memoria) AsignarSlice() (Slice, error) {
	if len(m.slicesLibres) == 0 {
		pagina, err := m.AsignarPaginas(1)
		if err != nil {
			return Slice{}, err
		}
		// quedan en orden inverso para que el primero en salir sea el de la base
		for i := SlicesPorPagina - 1; i >= 0; i-- {
			m.slicesLibres = append(m.slicesLibres, Slice{Base: pagina.Base + Direccion(i*TamSlice)})
		}
	}
	n := len(m.slicesLibres) - 1
	s := m.slicesLibres[n]
	m.slicesLibres = m.slicesLibres[:n]
	m.slicesEnUso++
	return s, nil
}

// LiberarSlice vuelve el slice a la lista libre. Los slices son
// independientes entre si, asi que no hay coalescencia.
func (m *Memoria) LiberarSlice(s Slice) {
	m.slicesLibres = append(m.slicesLibres, s)
	m.slicesEnUso--
}

func (m *Memoria) Estadisticas() Estadisticas {
	var libres uint64
	for _, b := range m.libres {
		libres += uint64(b.Paginas)
	}
	return Estadisticas{
		PaginasTotales: m.totales,
		PaginasLibres:  libres,
		Bloques:        len(m.libres),
		SlicesEnUso:    m.slicesEnUso,
		SlicesLibres:   len(m.slicesLibres),
	}
}

// BloquesLibres devuelve una copia de la lista libre.
func (m *Memoria) BloquesLibres() []Bloque {
	return slices.Clone(m.libres)
}
