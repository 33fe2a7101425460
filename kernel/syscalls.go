package kernel

import (
	"errors"
	"log/slog"

	"github.com/sisoputnfrba/tp-kernel-didactico/cola"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

type manejador func(k *Kernel, pcb *PCB, ll Llamada) error

var tablaSyscalls = [CantSyscalls]manejador{
	SysSalir:    sysSalir,
	SysMatar:    sysMatar,
	SysEsperar:  sysEsperar,
	SysCrear:    sysCrear,
	SysLeer:     sysLeer,
	SysEscribir: sysEscribir,
	SysDormir:   sysDormir,
	SysTiempo:   sysTiempo,
	SysPid:      sysPid,
	SysPPid:     sysPPid,
	SysEstado:   sysEstado,
}

// Syscall atiende una trampa del proceso actual. El resultado queda en el
// EAX del contexto del llamador; un error nunca es fatal para el kernel.
func (k *Kernel) Syscall(ll Llamada) {
	pcb := k.actual
	if pcb == nil || pcb == k.ocioso {
		k.panico("syscall sin un proceso de usuario en ejecucion")
	}

	if ll.Numero < 0 || ll.Numero >= CantSyscalls {
		utils.LoggerConFormato("## (%d) - Syscall invalida: %d", pcb.Pid, int32(ll.Numero))
		pcb.EstadoSalida = SalidaSyscallInvalida
		k.salir(pcb)
		k.despachar()
		return
	}

	slog.Debug("Syscall", "pid", pcb.Pid, "syscall", ll.Numero.String(), "args", ll.Args)
	if err := tablaSyscalls[ll.Numero](k, pcb, ll); err != nil {
		pcb.Contexto.EAX = uint32(aCodigo(err))
		slog.Debug("Syscall con error", "pid", pcb.Pid, "syscall", ll.Numero.String(), "error", err)
	}
}

// aCodigo traduce cualquier error interno a lo que ve el proceso.
func aCodigo(err error) Codigo {
	var c Codigo
	switch {
	case errors.As(err, &c):
		return c
	case errors.Is(err, memoria.ErrSinMemoria), errors.Is(err, cola.ErrSinEspacio):
		return ErrSinMemoria
	}
	return ErrFallo
}

func devolver(pcb *PCB, v int32) { pcb.Contexto.EAX = uint32(v) }

func sysSalir(k *Kernel, pcb *PCB, ll Llamada) error {
	pcb.EstadoSalida = ll.Args[0]
	k.salir(pcb)
	k.despachar()
	return nil
}

func sysCrear(k *Kernel, pcb *PCB, ll Llamada) error {
	if ll.Programa.Entrada == nil {
		return ErrInvalido
	}

	nuevo := k.pcbAsignar()
	if nuevo == nil {
		return ErrMaxProcesos
	}
	pila, err := k.asignarPila()
	if err != nil {
		k.pcbLiberar(nuevo)
		return ErrSinMemoria
	}

	pid, err := k.crear(nuevo, pila, pcb, ll.Programa, ll.Argv)
	if err != nil {
		k.liberarPila(pila)
		k.pcbLiberar(nuevo)
		return err
	}

	k.planificar(nuevo)
	k.activos++
	devolver(pcb, int32(pid))
	return nil
}

func sysDormir(k *Kernel, pcb *PCB, ll Llamada) error {
	ms := uint32(ll.Args[0])
	devolver(pcb, int32(Exito))

	if ms == 0 {
		k.planificar(pcb)
		k.despachar()
		return nil
	}

	// sin nodo para SLEEPING tampoco hay nodo para READY: sigue ejecutando
	pcb.Despertar = k.tiempo + k.ticksDesdeMs(ms)
	k.cambiarEstado(pcb, EstadoDurmiendo)
	pcb.Cola = k.durmientes
	if err := k.durmientes.Encolar(pcb); err != nil {
		slog.Warn("No se pudo encolar en SLEEPING, sigue ejecutando", "pid", pcb.Pid, "error", err)
		pcb.Despertar = 0
		pcb.Cola = nil
		k.cambiarEstado(pcb, EstadoEjecutando)
		return err
	}
	k.despachar()
	return nil
}

func sysTiempo(k *Kernel, pcb *PCB, _ Llamada) error {
	pcb.Contexto.EAX = uint32(k.tiempo)
	pcb.Contexto.EDX = uint32(k.tiempo >> 32)
	return nil
}

func sysPid(_ *Kernel, pcb *PCB, _ Llamada) error {
	devolver(pcb, int32(pcb.Pid))
	return nil
}

func sysPPid(_ *Kernel, pcb *PCB, _ Llamada) error {
	devolver(pcb, int32(pcb.Ppid))
	return nil
}

// sysEstado nunca falla: un pid desconocido se informa como UNUSED.
func sysEstado(k *Kernel, pcb *PCB, ll Llamada) error {
	pid := Pid(ll.Args[0])
	if pid == 0 || pid == pcb.Pid {
		devolver(pcb, int32(pcb.Estado))
		return nil
	}
	estado := EstadoLibre
	if otro := k.BuscarPCB(pid); otro != nil {
		estado = otro.Estado
	}
	devolver(pcb, int32(estado))
	return nil
}
