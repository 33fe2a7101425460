// Package kernel es el nucleo del sistema: tabla de procesos, pilas,
// planificador round robin con quantum fijo, reloj y despacho de syscalls.
//
// El kernel no es reentrante. Todas las operaciones exportadas asumen que el
// llamador ya serializo el acceso (en la maquina simulada, el equivalente a
// tener las interrupciones deshabilitadas).
package kernel

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-kernel-didactico/cola"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

type canal struct {
	disp       Dispositivo
	bloqueados *cola.Cola[*PCB]
}

type Kernel struct {
	cfg Config
	mem *memoria.Memoria

	tabla      [MaxProcesos]PCB
	pcbsLibres []int
	activos    int

	pilasLibres []*Pila

	siguientePid Pid
	tiempo       uint64

	actual *PCB
	init   *PCB
	ocioso *PCB

	listos     *cola.Cola[*PCB]
	durmientes *cola.Cola[*PCB]
	esperando  *cola.Cola[*PCB]
	zombies    *cola.Cola[*PCB]

	canales map[Canal]*canal

	direcciones    map[string]uint32
	siguienteTexto uint32

	alTerminar func(Pid)
}

func porDespertar(a, b *PCB) int {
	switch {
	case a.Despertar < b.Despertar:
		return -1
	case a.Despertar > b.Despertar:
		return 1
	}
	return 0
}

// Nuevo arranca el kernel: arma las colas, crea init y el proceso ocioso y
// despacha init. Cualquier falta de memoria en este punto es fatal.
func Nuevo(cfg Config, mem *memoria.Memoria, init, ocioso Programa) *Kernel {
	k := &Kernel{
		cfg:            cfg.ConDefectos(),
		mem:            mem,
		siguientePid:   primerPid,
		canales:        make(map[Canal]*canal),
		direcciones:    make(map[string]uint32),
		siguienteTexto: DireccionTexto,
	}

	for i := MaxProcesos - 1; i >= 0; i-- {
		k.tabla[i].indice = i
		k.pcbsLibres = append(k.pcbsLibres, i)
	}

	k.listos = k.debeCrearCola(nil)
	k.durmientes = k.debeCrearCola(porDespertar)
	k.esperando = k.debeCrearCola(nil)
	k.zombies = k.debeCrearCola(nil)

	k.init = k.debeCrearProceso(init, nil)
	k.ocioso = k.debeCrearProceso(ocioso, k.init)
	if k.init.Pid != PidInit || k.ocioso.Pid != PidOcioso {
		k.panico(fmt.Sprintf("pids de arranque inesperados: init=%d ocioso=%d", k.init.Pid, k.ocioso.Pid))
	}

	k.planificar(k.init)
	k.cambiarEstado(k.ocioso, EstadoListo)
	k.despachar()

	slog.Info("Kernel iniciado",
		"quantum", k.cfg.Quantum,
		"ticks_por_segundo", k.cfg.TicksPorSegundo,
		"memoria", mem.Estadisticas())
	return k
}

func (k *Kernel) debeCrearCola(comparar cola.Comparador[*PCB]) *cola.Cola[*PCB] {
	c, err := cola.Nueva(k.mem, comparar)
	if err != nil {
		k.panico(fmt.Sprintf("no se pudo crear una cola del sistema: %v", err))
	}
	return c
}

func (k *Kernel) debeCrearProceso(prog Programa, padre *PCB) *PCB {
	pcb := k.pcbAsignar()
	if pcb == nil {
		k.panico("no hay PCB para " + prog.Nombre)
	}
	pila, err := k.asignarPila()
	if err != nil {
		k.panico(fmt.Sprintf("no hay pila para %s: %v", prog.Nombre, err))
	}
	if _, err := k.crear(pcb, pila, padre, prog, []string{prog.Nombre}); err != nil {
		k.panico(fmt.Sprintf("no se pudo crear %s: %v", prog.Nombre, err))
	}
	k.activos++
	return pcb
}

// InstalarCanal registra el dispositivo que atiende un numero de canal.
func (k *Kernel) InstalarCanal(num Canal, d Dispositivo) error {
	if _, ok := k.canales[num]; ok {
		return fmt.Errorf("el canal %d ya tiene un dispositivo instalado", num)
	}
	bloqueados, err := cola.Nueva[*PCB](k.mem, nil)
	if err != nil {
		return fmt.Errorf("cola de bloqueados del canal %d: %w", num, err)
	}
	k.canales[num] = &canal{disp: d, bloqueados: bloqueados}
	return nil
}

// AlTerminar registra una funcion que se llama cada vez que un proceso
// termina y no va a volver a ejecutar.
func (k *Kernel) AlTerminar(f func(Pid)) { k.alTerminar = f }

func (k *Kernel) Actual() *PCB   { return k.actual }
func (k *Kernel) Init() *PCB     { return k.init }
func (k *Kernel) Ocioso() *PCB   { return k.ocioso }
func (k *Kernel) Tiempo() uint64 { return k.tiempo }
func (k *Kernel) Activos() int   { return k.activos }
func (k *Kernel) Config() Config { return k.cfg }

// Listos devuelve los pids de la cola de listos en orden.
func (k *Kernel) Listos() []Pid { return pidsDe(k.listos) }

func (k *Kernel) Durmientes() []Pid { return pidsDe(k.durmientes) }

func pidsDe(c *cola.Cola[*PCB]) []Pid {
	var pids []Pid
	for p := range c.Todos() {
		pids = append(pids, p.Pid)
	}
	return pids
}

// panico corta todo con un volcado del estado del kernel.
func (k *Kernel) panico(motivo string) {
	slog.Error("PANICO - "+motivo, "volcado", k.Volcado())
	utils.LoggerConFormato("## PANICO del kernel: %s", motivo)
	panic("kernel: " + motivo)
}
