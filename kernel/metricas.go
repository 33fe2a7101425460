package kernel

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

const cantEstados = int(EstadoZombie) + 1

// Metricas cuenta, por estado, cuantas veces entro el proceso (ME) y
// cuantos ticks paso ahi (MT).
type Metricas struct {
	Veces [cantEstados]int    `json:"veces"`
	Ticks [cantEstados]uint64 `json:"ticks"`
	desde uint64
}

// cambiarEstado es la unica transicion de estado de un proceso vivo.
func (k *Kernel) cambiarEstado(pcb *PCB, nuevo Estado) {
	anterior := pcb.Estado
	pcb.Metricas.Ticks[anterior] += k.tiempo - pcb.Metricas.desde
	pcb.Metricas.Veces[nuevo]++
	pcb.Metricas.desde = k.tiempo
	pcb.Estado = nuevo

	if anterior == nuevo {
		return
	}
	if pcb == k.ocioso {
		slog.Debug("Cambio de estado del ocioso", "anterior", anterior, "actual", nuevo)
		return
	}
	utils.LoggerConFormato("## (%d) Pasa del estado %s al estado %s", pcb.Pid, anterior, nuevo)
}

func (m *Metricas) String() string {
	var b strings.Builder
	for e := EstadoNuevo; int(e) < cantEstados; e++ {
		if e > EstadoNuevo {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%d) (%d)", e, m.Veces[e], m.Ticks[e])
	}
	return b.String()
}

func (k *Kernel) loguearMetricas(pcb *PCB) {
	// cierra el tramo del estado en el que estaba al terminar
	pcb.Metricas.Ticks[pcb.Estado] += k.tiempo - pcb.Metricas.desde
	pcb.Metricas.desde = k.tiempo
	utils.LoggerConFormato("## (%d) - Métricas de estado: %s", pcb.Pid, pcb.Metricas.String())
}
