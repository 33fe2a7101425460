package programas

import (
	"log/slog"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

// reintentoInit es cuanto duerme init si wait falla por algo que no sea
// quedarse sin hijos.
const reintentoInit = 10

// NuevoInit arma el proceso 1: crea el programa inicial y despues cosecha
// huerfanos para siempre.
func NuevoInit(inicial kernel.Programa, argv []string) kernel.Programa {
	return kernel.Programa{
		Nombre: "init",
		Entrada: func(sys kernel.Sistema, _ int, _ []string) int32 {
			if inicial.Entrada != nil {
				if _, err := sys.Crear(inicial, argv...); err != nil {
					slog.Error("init no pudo crear el programa inicial", "programa", inicial.Nombre, "error", err)
				}
			}

			for {
				pid, estado, err := sys.Esperar(0)
				if err != nil {
					slog.Warn("init: wait fallo", "error", err)
					sys.Dormir(reintentoInit)
					continue
				}
				utils.LoggerConFormato("## (%d) - init recolecto al proceso %d - Estado de salida: %d", kernel.PidInit, pid, estado)
			}
		},
	}
}
