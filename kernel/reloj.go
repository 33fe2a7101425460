package kernel

import "log/slog"

// Tick es el handler de la interrupcion del timer.
func (k *Kernel) Tick() {
	k.tiempo++

	// los que se despiertan entran a listos antes que el que agota el quantum
	for {
		pcb, ok := k.durmientes.Frente()
		if !ok || pcb.Despertar > k.tiempo {
			break
		}
		k.durmientes.Desencolar()
		slog.Debug("Despierta", "pid", pcb.Pid, "despertar", pcb.Despertar, "tiempo", k.tiempo)
		k.planificar(pcb)
	}

	actual := k.actual
	if actual == k.ocioso {
		if k.listos.Largo() > 0 {
			k.despachar()
		}
		return
	}

	actual.Quantum--
	if actual.Quantum <= 0 {
		k.planificar(actual)
		k.despachar()
	}
}

// ticksDesdeMs redondea hacia arriba, asi nadie duerme menos de lo pedido.
func (k *Kernel) ticksDesdeMs(ms uint32) uint64 {
	hz := uint64(k.cfg.TicksPorSegundo)
	return (uint64(ms)*hz + 999) / 1000
}
