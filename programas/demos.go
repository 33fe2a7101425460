package programas

import (
	"bytes"
	"fmt"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
)

// escritor [caracter] [veces]
func escritor(sys kernel.Sistema, argc int, argv []string) int32 {
	caracter := []byte("*")
	if argc > 1 && argv[1] != "" {
		caracter = []byte(argv[1][:1])
	}
	veces := argumento(argv, 2, 10)

	for range veces {
		if _, err := sys.Escribir(kernel.CanalConsola, caracter); err != nil {
			return codigoDe(err)
		}
	}
	return 0
}

// dormilon [ms]
func dormilon(sys kernel.Sistema, argc int, argv []string) int32 {
	ms := argumento(argv, 1, 100)

	inicio := sys.Tiempo()
	sys.Dormir(uint32(ms))
	fin := sys.Tiempo()

	msg := fmt.Sprintf("[%d] dormi %d ms (tick %d -> %d)\n", sys.Pid(), ms, inicio, fin)
	sys.Escribir(kernel.CanalConsola, []byte(msg))
	return 0
}

// eco copia la linea serie a la consola hasta recibir un EOT (0x04).
func eco(sys kernel.Sistema, argc int, argv []string) int32 {
	buf := make([]byte, 64)
	for {
		n, err := sys.Leer(kernel.CanalSerie, buf)
		if err != nil {
			return codigoDe(err)
		}
		datos := buf[:n]
		fin := bytes.IndexByte(datos, 0x04)
		if fin >= 0 {
			datos = datos[:fin]
		}
		if len(datos) > 0 {
			sys.Escribir(kernel.CanalConsola, datos)
		}
		if fin >= 0 {
			return 0
		}
	}
}

// familia [hijos] crea hijos escritores y devuelve cuantos terminaron bien.
func familia(sys kernel.Sistema, argc int, argv []string) int32 {
	hijos := argumento(argv, 1, 3)

	for i := range hijos {
		letra := string(rune('a' + i%26))
		if _, err := sys.Crear(Escritor, "escritor", letra, "3"); err != nil {
			return codigoDe(err)
		}
	}

	var bien int32
	for range hijos {
		if _, estado, err := sys.Esperar(0); err == nil && estado == 0 {
			bien++
		}
	}
	return bien
}
