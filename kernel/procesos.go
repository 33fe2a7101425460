package kernel

import (
	"log/slog"

	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

// crear deja el PCB listo para planificarse: pid nuevo, vinculo con el padre
// y pila sembrada. No lo encola.
func (k *Kernel) crear(pcb *PCB, pila *Pila, padre *PCB, prog Programa, argv []string) (Pid, error) {
	ctx, err := sembrar(pila, k.direccionDe(prog), argv)
	if err != nil {
		return 0, err
	}

	pcb.Pid = k.siguientePid
	k.siguientePid++

	pcb.Pila = pila
	pcb.Contexto = ctx
	pcb.Programa = prog
	pcb.Metricas = Metricas{desde: k.tiempo}
	pcb.Metricas.Veces[EstadoNuevo] = 1
	pcb.Quantum = k.cfg.Quantum
	if padre != nil {
		pcb.Ppid = padre.Pid
		padre.Hijos++
	}

	utils.LoggerConFormato("## (%d) Se crea el proceso %s - Estado: %s", pcb.Pid, prog.Nombre, pcb.Estado)
	slog.Debug("Pila sembrada",
		"pid", pcb.Pid,
		"ppid", pcb.Ppid,
		"eip", ctx.EIP,
		"esp", ctx.ESP,
		"argv", argv)
	return pcb.Pid, nil
}

// limpiar devuelve la pila y el PCB. Despues de esto el pid deja de existir.
func (k *Kernel) limpiar(pcb *PCB) {
	pid := pcb.Pid
	k.liberarPila(pcb.Pila)
	k.pcbLiberar(pcb)
	k.activos--
	slog.Debug("PCB reclamado", "pid", pid, "activos", k.activos)
}
