package kernel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

const (
	PaginasPorPila = 4
	TamPila        = PaginasPorPila * memoria.TamPagina

	// MaxBytesArgumentos es el tope de las cadenas de argv empaquetadas.
	MaxBytesArgumentos = 1024

	// DireccionTrampolin es a donde "vuelve" la funcion de entrada de un
	// proceso; ahi vive la llamada a exit con el valor de retorno.
	DireccionTrampolin uint32 = 0x00008000
	DireccionTexto     uint32 = 0x00010000
	tamTexto           uint32 = 0x1000

	EFLAGSDefecto  uint32 = 0x00000202 // IF + bit reservado
	SelectorCodigo uint32 = 0x0010
	SelectorDatos  uint32 = 0x0018
	SelectorPila   uint32 = 0x0020

	alineacionArgumentos = 16
)

var TamContexto = binary.Size(Contexto{})

// Pila es la pila de ejecucion de un proceso. Datos es la imagen de sus
// bytes; la direccion del byte i es Bloque.Base+i.
type Pila struct {
	Bloque memoria.Bloque
	Datos  []byte
}

func (p *Pila) direccion(off int) uint32 { return uint32(p.Bloque.Base) + uint32(off) }

// offset traduce una direccion a un indice de Datos, verificando que entren tam bytes.
func (p *Pila) offset(dir uint32, tam int) (int, error) {
	off := int(dir) - int(uint32(p.Bloque.Base))
	if off < 0 || off+tam > len(p.Datos) {
		return 0, fmt.Errorf("direccion %#x fuera de la pila", dir)
	}
	return off, nil
}

func (p *Pila) palabra(off int) uint32 { return binary.LittleEndian.Uint32(p.Datos[off:]) }

func (p *Pila) ponerPalabra(off int, v uint32) { binary.LittleEndian.PutUint32(p.Datos[off:], v) }

// asignarPila reutiliza una pila liberada o pide paginas nuevas.
func (k *Kernel) asignarPila() (*Pila, error) {
	if n := len(k.pilasLibres); n > 0 {
		pila := k.pilasLibres[n-1]
		k.pilasLibres = k.pilasLibres[:n-1]
		return pila, nil
	}
	bloque, err := k.mem.AsignarPaginas(PaginasPorPila)
	if err != nil {
		return nil, err
	}
	return &Pila{Bloque: bloque, Datos: make([]byte, TamPila)}, nil
}

func (k *Kernel) liberarPila(pila *Pila) {
	if pila == nil {
		return
	}
	k.pilasLibres = append(k.pilasLibres, pila)
}

// PilasLibres es la cantidad de pilas esperando ser reutilizadas.
func (k *Kernel) PilasLibres() int { return len(k.pilasLibres) }

// sembrar arma la pila como si el proceso estuviera por ejecutar la primera
// instruccion de su entrada. De arriba hacia abajo:
//
//	cadenas de argv terminadas en NUL
//	arreglo de punteros argv[0..argc], argv[argc] = 0
//	(relleno hasta alineacion de 16)
//	argv, argc             <- bloque de argumentos
//	direccion de retorno   = DireccionTrampolin
//	contexto guardado      <- ESP apunta a la direccion de retorno
func sembrar(pila *Pila, entrada uint32, argv []string) (*Contexto, error) {
	var cadenas []byte
	for _, a := range argv {
		cadenas = append(cadenas, a...)
		cadenas = append(cadenas, 0)
	}
	if len(cadenas) > MaxBytesArgumentos {
		return nil, ErrArgsLargos
	}

	clear(pila.Datos)
	argc := len(argv)

	offCadenas := (TamPila - len(cadenas)) &^ 3
	copy(pila.Datos[offCadenas:], cadenas)

	offArgv := offCadenas - 4*(argc+1)
	pos := offCadenas
	for i, a := range argv {
		pila.ponerPalabra(offArgv+4*i, pila.direccion(pos))
		pos += len(a) + 1
	}
	pila.ponerPalabra(offArgv+4*argc, 0)

	offBloque := (offArgv - 8) &^ (alineacionArgumentos - 1)
	pila.ponerPalabra(offBloque, uint32(argc))
	pila.ponerPalabra(offBloque+4, pila.direccion(offArgv))

	offRetorno := offBloque - 4
	pila.ponerPalabra(offRetorno, DireccionTrampolin)

	ctx := &Contexto{
		SS:     SelectorPila,
		GS:     SelectorDatos,
		FS:     SelectorDatos,
		ES:     SelectorDatos,
		DS:     SelectorDatos,
		ESP:    pila.direccion(offRetorno),
		EIP:    entrada,
		CS:     SelectorCodigo,
		EFLAGS: EFLAGSDefecto,
	}
	offContexto := offRetorno - TamContexto
	if _, err := binary.Encode(pila.Datos[offContexto:], binary.LittleEndian, ctx); err != nil {
		return nil, fmt.Errorf("serializando contexto: %w", err)
	}
	return ctx, nil
}

// LeerArgumentos recupera argc y argv desde la pila sembrada, siguiendo los
// punteros tal como lo haria el codigo de usuario.
func LeerArgumentos(pila *Pila, ctx *Contexto) (int, []string, error) {
	offRetorno, err := pila.offset(ctx.ESP, 12)
	if err != nil {
		return 0, nil, err
	}
	if pila.palabra(offRetorno) != DireccionTrampolin {
		return 0, nil, errors.New("la direccion de retorno no es el trampolin")
	}

	argc := int(pila.palabra(offRetorno + 4))
	offArgv, err := pila.offset(pila.palabra(offRetorno+8), 4*(argc+1))
	if err != nil {
		return 0, nil, err
	}

	argv := make([]string, 0, argc)
	for i := 0; i < argc; i++ {
		off, err := pila.offset(pila.palabra(offArgv+4*i), 1)
		if err != nil {
			return 0, nil, fmt.Errorf("argv[%d]: %w", i, err)
		}
		fin := off
		for fin < len(pila.Datos) && pila.Datos[fin] != 0 {
			fin++
		}
		argv = append(argv, string(pila.Datos[off:fin]))
	}
	return argc, argv, nil
}

// ContextoGuardado decodifica el contexto que quedo escrito debajo de la
// direccion de retorno.
func ContextoGuardado(pila *Pila, ctx *Contexto) (Contexto, error) {
	var guardado Contexto
	offRetorno, err := pila.offset(ctx.ESP, 4)
	if err != nil {
		return guardado, err
	}
	_, err = binary.Decode(pila.Datos[offRetorno-TamContexto:], binary.LittleEndian, &guardado)
	return guardado, err
}

// direccionDe asigna a cada programa una direccion de texto fija.
func (k *Kernel) direccionDe(prog Programa) uint32 {
	if dir, ok := k.direcciones[prog.Nombre]; ok {
		return dir
	}
	dir := k.siguienteTexto
	k.siguienteTexto += tamTexto
	k.direcciones[prog.Nombre] = dir
	return dir
}
