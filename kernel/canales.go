package kernel

import (
	"errors"
	"log/slog"

	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

func (k *Kernel) buscarCanal(num Canal) (*canal, error) {
	c, ok := k.canales[num]
	if !ok {
		return nil, ErrCanalInvalido
	}
	return c, nil
}

func sysLeer(k *Kernel, pcb *PCB, ll Llamada) error {
	c, err := k.buscarCanal(Canal(ll.Args[0]))
	if err != nil {
		return err
	}
	if len(ll.Buffer) == 0 {
		devolver(pcb, 0)
		return nil
	}

	// con lectores esperando, el nuevo se pone detras aunque ya haya datos
	if c.bloqueados.Largo() == 0 || !c.disp.Bloqueante() {
		n, err := c.disp.Leer(ll.Buffer)
		if err == nil {
			devolver(pcb, int32(n))
			return nil
		}
		if !errors.Is(err, ErrSinDatos) || !c.disp.Bloqueante() {
			return err
		}
	}

	pcb.lectura = &ll
	k.cambiarEstado(pcb, EstadoBloqueado)
	pcb.Cola = c.bloqueados
	if err := c.bloqueados.Encolar(pcb); err != nil {
		pcb.lectura = nil
		k.cambiarEstado(pcb, EstadoEjecutando)
		pcb.Cola = nil
		return err
	}
	utils.LoggerConFormato("## (%d) - Bloqueado por E/S en el canal %d", pcb.Pid, ll.Args[0])
	k.despachar()
	return nil
}

func sysEscribir(k *Kernel, pcb *PCB, ll Llamada) error {
	c, err := k.buscarCanal(Canal(ll.Args[0]))
	if err != nil {
		return err
	}
	n, err := c.disp.Escribir(ll.Buffer)
	if err != nil {
		return err
	}
	devolver(pcb, int32(n))
	return nil
}

// EntradaDisponible es la interrupcion de un dispositivo que recibio datos.
// Reintenta las lecturas pendientes en orden de llegada hasta que el
// dispositivo se queda sin datos; cada lector atendido vuelve a listos.
// Nunca le quita el procesador a un proceso de usuario.
func (k *Kernel) EntradaDisponible(num Canal) {
	c, ok := k.canales[num]
	if !ok {
		slog.Warn("Interrupcion de un canal sin dispositivo", "canal", num)
		return
	}

	for {
		pcb, ok := c.bloqueados.Frente()
		if !ok {
			break
		}
		n, err := c.disp.Leer(pcb.lectura.Buffer)
		if errors.Is(err, ErrSinDatos) {
			break
		}

		c.bloqueados.Desencolar()
		if err != nil {
			pcb.Contexto.EAX = uint32(aCodigo(err))
		} else {
			devolver(pcb, int32(n))
		}
		pcb.lectura = nil
		utils.LoggerConFormato("## (%d) finalizó E/S en el canal %d", pcb.Pid, num)
		k.planificar(pcb)
	}

	// el ocioso cede en cuanto hay alguien listo
	if k.actual == k.ocioso && k.listos.Largo() > 0 {
		k.despachar()
	}
}
