// Package cpu simula el procesador: ejecuta el cuerpo de cada proceso en su
// propia goroutine y se asegura de que haya a lo sumo uno corriendo a la vez.
//
// El mutex de la CPU hace de "interrupciones deshabilitadas": todo llamado al
// kernel (trampas, ticks del timer, interrupciones de dispositivos) pasa por
// aca con el mutex tomado.
package cpu

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

type CPU struct {
	mu sync.Mutex
	k  *kernel.Kernel

	hilos map[kernel.Pid]*hilo
	// corriendo es el hilo que tiene el procesador en codigo de usuario; nil
	// si el procesador esta ocioso
	corriendo *hilo
	arrancada bool
}

// hilo es la ejecucion de un proceso de usuario.
type hilo struct {
	pid     kernel.Pid
	entrada kernel.Entrada
	argc    int
	argv    []string

	turno     chan struct{}
	fin       chan struct{}
	terminado bool
}

// terminado es el valor con el que se desarma la goroutine de un proceso que
// ya no va a volver a ejecutar.
type terminado struct{ pid kernel.Pid }

func Nueva(k *kernel.Kernel) *CPU {
	c := &CPU{
		k:     k,
		hilos: make(map[kernel.Pid]*hilo),
	}
	k.AlTerminar(c.alTerminar)
	return c
}

// Arrancar le da el procesador al proceso actual del kernel (init, despues
// del arranque).
func (c *CPU) Arrancar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.arrancada {
		return
	}
	c.arrancada = true
	c.entregar()
}

// Ejecutar genera los ticks del timer a la frecuencia configurada hasta que
// se cancele el contexto.
func (c *CPU) Ejecutar(ctx context.Context) error {
	c.Arrancar()

	periodo := time.Second / time.Duration(c.k.Config().TicksPorSegundo)
	ticker := time.NewTicker(periodo)
	defer ticker.Stop()

	slog.Info("Timer iniciado", "periodo", periodo)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick es la interrupcion del timer. Si el timer desaloja al proceso que
// esta corriendo, el cambio se concreta en su proxima trampa.
func (c *CPU) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.k.Tick()
	if c.corriendo == nil {
		c.entregar()
	}
}

// Interrupcion es la entrada de los dispositivos cuando reciben datos.
func (c *CPU) Interrupcion(canal kernel.Canal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.k.EntradaDisponible(canal)
	if c.corriendo == nil {
		c.entregar()
	}
}

// Inspeccionar corre f con las interrupciones deshabilitadas.
func (c *CPU) Inspeccionar(f func(k *kernel.Kernel)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f(c.k)
}

func (c *CPU) Volcado() kernel.Volcado {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.k.Volcado()
}

// entregar le pasa el procesador al proceso actual del kernel, arrancando su
// goroutine si es la primera vez que se despacha. Con el ocioso como actual
// el procesador queda libre.
func (c *CPU) entregar() {
	pcb := c.k.Actual()
	if pcb == nil || pcb == c.k.Ocioso() {
		c.corriendo = nil
		return
	}

	h, ok := c.hilos[pcb.Pid]
	if !ok {
		h = c.nuevoHilo(pcb)
		c.corriendo = h
		go c.correr(h)
		return
	}

	c.corriendo = h
	select {
	case h.turno <- struct{}{}:
	default:
	}
}

func (c *CPU) nuevoHilo(pcb *kernel.PCB) *hilo {
	argc, argv, err := kernel.LeerArgumentos(pcb.Pila, pcb.Contexto)
	if err != nil {
		slog.Error("No se pudieron leer los argumentos de la pila", "pid", pcb.Pid, "error", err)
	}
	h := &hilo{
		pid:     pcb.Pid,
		entrada: pcb.Programa.Entrada,
		argc:    argc,
		argv:    argv,
		turno:   make(chan struct{}, 1),
		fin:     make(chan struct{}),
	}
	c.hilos[pcb.Pid] = h
	utils.LoggerConFormato("## (%d) - Comienza a ejecutar %s", pcb.Pid, pcb.Programa.Nombre)
	return h
}

// correr ejecuta el cuerpo del proceso. Volver de la entrada es llamar a
// exit con el valor devuelto.
func (c *CPU) correr(h *hilo) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(terminado); !ok {
				panic(r)
			}
			slog.Debug("Goroutine del proceso terminada", "pid", h.pid)
		}
	}()

	sys := &Sistema{c: c, h: h}
	valor := h.entrada(sys, h.argc, h.argv)
	sys.Salir(valor)
}

// alTerminar lo llama el kernel (con el mutex tomado) cuando un proceso
// termina.
func (c *CPU) alTerminar(pid kernel.Pid) {
	h, ok := c.hilos[pid]
	if !ok {
		return
	}
	h.terminado = true
	close(h.fin)
	delete(c.hilos, pid)
}

func (c *CPU) esActual(h *hilo) bool {
	pcb := c.k.Actual()
	return pcb != nil && pcb.Pid == h.pid
}

// esperarTurno se llama con el mutex tomado y vuelve con el mutex tomado,
// cuando h es de nuevo el proceso actual. Si h termino mientras tanto, no
// vuelve: desarma la goroutine.
func (c *CPU) esperarTurno(h *hilo) {
	for {
		if c.corriendo == h && !c.esActual(h) {
			c.corriendo = nil
			c.entregar()
		}
		if h.terminado {
			c.mu.Unlock()
			panic(terminado{pid: h.pid})
		}
		if c.esActual(h) {
			c.corriendo = h
			return
		}

		c.mu.Unlock()
		select {
		case <-h.turno:
		case <-h.fin:
		}
		c.mu.Lock()
	}
}

// trampa entra al kernel en nombre de h y devuelve EDX:EAX.
func (c *CPU) trampa(h *hilo, ll kernel.Llamada) (eax, edx uint32) {
	// sin defer: esperarTurno suelta el mutex antes de desarmar la goroutine
	c.mu.Lock()

	// si el timer lo desalojo, primero espera a que le toque
	c.esperarTurno(h)
	c.k.Syscall(ll)
	c.esperarTurno(h)

	ctx := c.k.Actual().Contexto
	eax, edx = ctx.EAX, ctx.EDX
	c.mu.Unlock()
	return eax, edx
}
