package memoria

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

type TipoRegion uint32

// Tipos de region que reporta el BIOS (int 0x15, eax=0xE820).
const (
	RegionUsable TipoRegion = iota + 1
	RegionReservada
	RegionACPIRecuperable
	RegionACPINVS
	RegionDefectuosa
)

func (t TipoRegion) String() string {
	switch t {
	case RegionUsable:
		return "usable"
	case RegionReservada:
		return "reservada"
	case RegionACPIRecuperable:
		return "acpi-recuperable"
	case RegionACPINVS:
		return "acpi-nvs"
	case RegionDefectuosa:
		return "defectuosa"
	}
	return fmt.Sprintf("TipoRegion(%d)", uint32(t))
}

// Region es un descriptor del mapa de memoria tal como lo deja el BIOS.
type Region struct {
	Base  uint64
	Largo uint64
	Tipo  TipoRegion
	ACPI  uint32
}

const (
	tamDescriptor = 24
	maxPrereserva = 64

	// InicioExtendida es donde empieza la memoria por encima del primer MiB.
	InicioExtendida = 0x100000
)

// LeerMapaBIOS parsea el mapa binario: un contador uint32 seguido de
// descriptores de 24 bytes (base, largo, tipo, flags ACPI), little endian.
func LeerMapaBIOS(r io.Reader) ([]Region, error) {
	var cantidad uint32
	if err := binary.Read(r, binary.LittleEndian, &cantidad); err != nil {
		return nil, fmt.Errorf("leyendo cantidad de regiones: %w", err)
	}

	// la cantidad viene del archivo: no se reserva mas de lo que se leyo
	regiones := make([]Region, 0, min(cantidad, maxPrereserva))
	var buf [tamDescriptor]byte
	for i := uint32(0); i < cantidad; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("leyendo region %d: %w", i, err)
		}
		regiones = append(regiones, Region{
			Base:  binary.LittleEndian.Uint64(buf[0:8]),
			Largo: binary.LittleEndian.Uint64(buf[8:16]),
			Tipo:  TipoRegion(binary.LittleEndian.Uint32(buf[16:20])),
			ACPI:  binary.LittleEndian.Uint32(buf[20:24]),
		})
	}
	return regiones, nil
}

// EscribirMapaBIOS es la inversa de LeerMapaBIOS.
func EscribirMapaBIOS(w io.Writer, regiones []Region) error {
	buf := make([]byte, 4, 4+len(regiones)*tamDescriptor)
	binary.LittleEndian.PutUint32(buf, uint32(len(regiones)))
	for _, r := range regiones {
		buf = binary.LittleEndian.AppendUint64(buf, r.Base)
		buf = binary.LittleEndian.AppendUint64(buf, r.Largo)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(r.Tipo))
		buf = binary.LittleEndian.AppendUint32(buf, r.ACPI)
	}
	_, err := w.Write(buf)
	return err
}

// ValidarTamanio rechaza tamanios que no llegan a la memoria extendida.
func ValidarTamanio(tamanio uint64) error {
	if tamanio <= InicioExtendida {
		return fmt.Errorf("%w: %d bytes, tiene que superar %#x", ErrTamanioInvalido, tamanio, InicioExtendida)
	}
	return nil
}

// MapaPorDefecto arma un mapa tipico de PC: memoria convencional, el hueco
// de video/ROM reservado y memoria extendida desde 1 MiB hasta tamanio.
// Sin memoria extendida el mapa solo tiene la parte convencional.
func MapaPorDefecto(tamanio uint64) []Region {
	mapa := []Region{
		{Base: 0, Largo: min(tamanio, 0x9FC00), Tipo: RegionUsable, ACPI: 1},
		{Base: 0x9FC00, Largo: 0x400, Tipo: RegionReservada, ACPI: 1},
		{Base: 0xF0000, Largo: 0x10000, Tipo: RegionReservada, ACPI: 1},
	}
	if tamanio > InicioExtendida {
		mapa = append(mapa, Region{Base: InicioExtendida, Largo: tamanio - InicioExtendida, Tipo: RegionUsable, ACPI: 1})
	}
	return mapa
}

func redondearArriba(d Direccion) Direccion { return (d + TamPagina - 1) &^ (TamPagina - 1) }
func redondearAbajo(d Direccion) Direccion  { return d &^ (TamPagina - 1) }

// bloquesDesdeMapa se queda con las regiones usables por encima de la carga
// del kernel y por debajo del techo, alineadas a pagina y ordenadas.
func bloquesDesdeMapa(mapa []Region, cargaKernel Direccion) []Bloque {
	var bloques []Bloque
	for _, r := range mapa {
		if r.Tipo != RegionUsable || r.Largo == 0 {
			continue
		}
		inicio := Direccion(r.Base)
		fin := Direccion(r.Base + r.Largo)
		if fin <= inicio { // desborde
			fin = Techo
		}
		inicio = max(inicio, cargaKernel)
		fin = min(fin, Techo)

		inicio, fin = redondearArriba(inicio), redondearAbajo(fin)
		if fin <= inicio {
			continue
		}
		bloques = append(bloques, Bloque{Base: inicio, Paginas: uint32((fin - inicio) / TamPagina)})
	}

	slices.SortFunc(bloques, func(a, b Bloque) int {
		switch {
		case a.Base < b.Base:
			return -1
		case a.Base > b.Base:
			return 1
		}
		return 0
	})

	// regiones superpuestas o pegadas quedan como un unico bloque
	var resultado []Bloque
	for _, b := range bloques {
		if n := len(resultado); n > 0 && b.Base <= resultado[n-1].Fin() {
			ultimo := &resultado[n-1]
			if b.Fin() > ultimo.Fin() {
				ultimo.Paginas = uint32((b.Fin() - ultimo.Base) / TamPagina)
			}
			continue
		}
		resultado = append(resultado, b)
	}
	return resultado
}
