package kernel

import "log/slog"

// planificar pone al proceso al final de la cola de listos. Si no hay lugar
// en la cola no hay a donde mandar un proceso ejecutable, y eso es fatal.
func (k *Kernel) planificar(pcb *PCB) {
	k.cambiarEstado(pcb, EstadoListo)
	if pcb == k.ocioso {
		// el ocioso nunca se encola, es el reemplazo cuando no hay nadie
		pcb.Cola = nil
		return
	}
	pcb.Cola = k.listos
	if err := k.listos.Encolar(pcb); err != nil {
		pcb.Cola = nil
		k.panico("no se pudo encolar en READY al proceso " + pcb.Programa.Nombre + ": " + err.Error())
	}
}

// despachar elige el proximo proceso actual: la cabeza de listos o, si no
// hay nadie, el ocioso. Nunca falla.
func (k *Kernel) despachar() {
	pcb, ok := k.listos.Desencolar()
	if !ok {
		pcb = k.ocioso
	}

	anterior := k.actual
	if anterior == k.ocioso && pcb != k.ocioso {
		k.cambiarEstado(k.ocioso, EstadoListo)
	}

	k.cambiarEstado(pcb, EstadoEjecutando)
	pcb.Cola = nil
	pcb.Quantum = k.cfg.Quantum
	k.actual = pcb

	if anterior != pcb {
		slog.Debug("Despacho", "pid", pcb.Pid, "programa", pcb.Programa.Nombre, "tiempo", k.tiempo)
	}
}
