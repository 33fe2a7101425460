package kernel

import (
	"log/slog"

	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

// salir es el protocolo comun de terminacion (exit, kill y syscall invalida).
// Reparenta los hijos a init y, segun lo que este haciendo el padre, le
// entrega el estado en el momento o deja al proceso como zombie.
// El llamador se encarga de despachar si el que termina era el actual.
func (k *Kernel) salir(pcb *PCB) {
	if pcb == k.init || pcb == k.ocioso {
		k.panico("termino un proceso del sistema")
	}

	utils.LoggerConFormato("## (%d) - Finaliza el proceso - Estado de salida: %d", pcb.Pid, pcb.EstadoSalida)
	k.loguearMetricas(pcb)

	huerfanos, zombisHuerfanos := k.reparentar(pcb)
	if huerfanos != pcb.Hijos {
		slog.Warn("Cantidad de hijos inconsistente al terminar",
			"pid", pcb.Pid,
			"registrados", pcb.Hijos,
			"encontrados", huerfanos)
	}
	pcb.Hijos = 0
	pcb.lectura = nil
	pcb.esperaPid, pcb.destinoEstado = 0, nil

	if k.alTerminar != nil {
		k.alTerminar(pcb.Pid)
	}
	if k.actual == pcb {
		k.actual = nil
	}

	padre := k.BuscarPCB(pcb.Ppid)
	if padre == nil {
		slog.Warn("Proceso sin padre vivo, se adopta por init", "pid", pcb.Pid, "ppid", pcb.Ppid)
		pcb.Ppid = PidInit
		padre = k.init
		padre.Hijos++
	}

	if k.esperaA(padre, pcb) {
		k.entregar(padre, pcb)
	} else {
		k.cambiarEstado(pcb, EstadoZombie)
		pcb.Cola = k.zombies
		if err := k.zombies.Encolar(pcb); err != nil {
			// wait igual lo encuentra recorriendo la tabla
			slog.Warn("No se pudo encolar en ZOMBIE", "pid", pcb.Pid, "error", err)
			pcb.Cola = nil
		}
	}

	// un zombie que paso a ser de init se le entrega si init ya lo espera
	for _, z := range zombisHuerfanos {
		if !k.esperaA(k.init, z) {
			break
		}
		k.entregar(k.init, z)
	}
}

// reparentar pasa a init todos los hijos vivos de pcb. Devuelve cuantos
// encontro y cuales de ellos ya eran zombies.
func (k *Kernel) reparentar(pcb *PCB) (int, []*PCB) {
	encontrados := 0
	var zombis []*PCB
	for i := range k.tabla {
		hijo := &k.tabla[i]
		if hijo.Estado == EstadoLibre || hijo == pcb || hijo.Ppid != pcb.Pid {
			continue
		}
		hijo.Ppid = PidInit
		k.init.Hijos++
		encontrados++
		if hijo.Estado == EstadoZombie {
			zombis = append(zombis, hijo)
		}
		slog.Debug("Huerfano adoptado por init", "pid", hijo.Pid, "padre_anterior", pcb.Pid)
	}
	return encontrados, zombis
}

func (k *Kernel) esperaA(padre, hijo *PCB) bool {
	return padre.Estado == EstadoEsperando &&
		(padre.esperaPid == 0 || padre.esperaPid == hijo.Pid)
}

// entregar despierta a un padre bloqueado en wait con el estado del hijo.
func (k *Kernel) entregar(padre, hijo *PCB) {
	if padre.Cola != nil {
		padre.Cola.Quitar(padre)
	}
	destino := padre.destinoEstado
	padre.esperaPid, padre.destinoEstado = 0, nil

	k.cosechar(padre, hijo, destino)
	k.planificar(padre)
}

// cosechar copia el estado de salida al padre y reclama el PCB del hijo.
func (k *Kernel) cosechar(padre, hijo *PCB, destino *int32) {
	if hijo.Cola != nil {
		hijo.Cola.Quitar(hijo)
	}
	devolver(padre, int32(hijo.Pid))
	if destino != nil {
		*destino = hijo.EstadoSalida
	}
	padre.Hijos--
	utils.LoggerConFormato("## (%d) - Recolecta al hijo %d - Estado de salida: %d", padre.Pid, hijo.Pid, hijo.EstadoSalida)
	k.limpiar(hijo)
}

func sysMatar(k *Kernel, pcb *PCB, ll Llamada) error {
	pid := Pid(ll.Args[0])
	if pid == 0 {
		pid = pcb.Pid
	}

	// init y el ocioso no se pueden matar, ni siquiera a si mismos
	if pid == PidInit || pid == PidOcioso {
		return ErrInvalido
	}
	if pid == pcb.Pid {
		pcb.EstadoSalida = SalidaMatado
		k.salir(pcb)
		k.despachar()
		return nil
	}

	victima := k.BuscarPCB(pid)
	if victima == nil || victima.Estado == EstadoZombie {
		return ErrNoEncontrado
	}

	if victima.Cola != nil {
		victima.Cola.Quitar(victima)
		victima.Cola = nil
	}
	utils.LoggerConFormato("## (%d) - Mata al proceso %d (%s)", pcb.Pid, victima.Pid, victima.Estado)
	victima.EstadoSalida = SalidaMatado
	k.salir(victima)

	devolver(pcb, int32(Exito))
	return nil
}

func sysEsperar(k *Kernel, pcb *PCB, ll Llamada) error {
	pid := Pid(ll.Args[0])

	if pcb.Hijos == 0 {
		return ErrSinHijos
	}
	if pid == pcb.Pid {
		return ErrInvalido
	}

	var hijo *PCB
	if pid == 0 {
		hijo = k.zombieDe(pcb)
	} else {
		hijo = k.BuscarPCB(pid)
		if hijo == nil {
			return ErrNoEncontrado
		}
		if hijo.Ppid != pcb.Pid {
			return ErrInvalido
		}
		if hijo.Estado != EstadoZombie {
			hijo = nil
		}
	}

	if hijo != nil {
		k.cosechar(pcb, hijo, ll.Estado)
		return nil
	}

	pcb.esperaPid = pid
	pcb.destinoEstado = ll.Estado
	k.cambiarEstado(pcb, EstadoEsperando)
	pcb.Cola = k.esperando
	if err := k.esperando.Encolar(pcb); err != nil {
		pcb.esperaPid, pcb.destinoEstado = 0, nil
		k.cambiarEstado(pcb, EstadoEjecutando)
		pcb.Cola = nil
		return err
	}
	k.despachar()
	return nil
}

// zombieDe busca el hijo zombie mas viejo; primero en la cola de zombies y,
// por si alguno no pudo encolarse, en la tabla.
func (k *Kernel) zombieDe(padre *PCB) *PCB {
	for z := range k.zombies.Todos() {
		if z.Ppid == padre.Pid {
			return z
		}
	}
	for i := range k.tabla {
		z := &k.tabla[i]
		if z.Estado == EstadoZombie && z.Ppid == padre.Pid {
			return z
		}
	}
	return nil
}
