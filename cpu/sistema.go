package cpu

import (
	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
)

// Sistema es la biblioteca de syscalls de un proceso: cada metodo arma la
// trampa correspondiente y traduce el valor de EAX.
type Sistema struct {
	c *CPU
	h *hilo
}

var _ kernel.Sistema = (*Sistema)(nil)

func comoError(v int32) error {
	if v < 0 {
		return kernel.Codigo(v)
	}
	return nil
}

func (s *Sistema) llamar(ll kernel.Llamada) int32 {
	eax, _ := s.c.trampa(s.h, ll)
	return int32(eax)
}

// Trampa hace una syscall cruda por numero, sin validar nada.
func (s *Sistema) Trampa(num kernel.Numero, args ...int32) int32 {
	ll := kernel.Llamada{Numero: num}
	copy(ll.Args[:], args)
	return s.llamar(ll)
}

// Salir no vuelve.
func (s *Sistema) Salir(estado int32) {
	s.llamar(kernel.Llamada{Numero: kernel.SysSalir, Args: [3]int32{estado}})
	panic("exit volvio al proceso")
}

func (s *Sistema) Matar(pid kernel.Pid) error {
	return comoError(s.llamar(kernel.Llamada{Numero: kernel.SysMatar, Args: [3]int32{int32(pid)}}))
}

func (s *Sistema) Esperar(pid kernel.Pid) (kernel.Pid, int32, error) {
	var estado int32
	v := s.llamar(kernel.Llamada{Numero: kernel.SysEsperar, Args: [3]int32{int32(pid)}, Estado: &estado})
	if err := comoError(v); err != nil {
		return 0, 0, err
	}
	return kernel.Pid(v), estado, nil
}

func (s *Sistema) Crear(prog kernel.Programa, argv ...string) (kernel.Pid, error) {
	if len(argv) == 0 {
		argv = []string{prog.Nombre}
	}
	v := s.llamar(kernel.Llamada{Numero: kernel.SysCrear, Programa: prog, Argv: argv})
	if err := comoError(v); err != nil {
		return 0, err
	}
	return kernel.Pid(v), nil
}

func (s *Sistema) Leer(canal kernel.Canal, buf []byte) (int, error) {
	v := s.llamar(kernel.Llamada{Numero: kernel.SysLeer, Args: [3]int32{int32(canal), int32(len(buf))}, Buffer: buf})
	if err := comoError(v); err != nil {
		return 0, err
	}
	return int(v), nil
}

func (s *Sistema) Escribir(canal kernel.Canal, buf []byte) (int, error) {
	v := s.llamar(kernel.Llamada{Numero: kernel.SysEscribir, Args: [3]int32{int32(canal), int32(len(buf))}, Buffer: buf})
	if err := comoError(v); err != nil {
		return 0, err
	}
	return int(v), nil
}

func (s *Sistema) Dormir(ms uint32) {
	s.llamar(kernel.Llamada{Numero: kernel.SysDormir, Args: [3]int32{int32(ms)}})
}

func (s *Sistema) Tiempo() uint64 {
	eax, edx := s.c.trampa(s.h, kernel.Llamada{Numero: kernel.SysTiempo})
	return uint64(edx)<<32 | uint64(eax)
}

func (s *Sistema) Pid() kernel.Pid {
	return kernel.Pid(s.llamar(kernel.Llamada{Numero: kernel.SysPid}))
}

func (s *Sistema) PPid() kernel.Pid {
	return kernel.Pid(s.llamar(kernel.Llamada{Numero: kernel.SysPPid}))
}

func (s *Sistema) EstadoDe(pid kernel.Pid) kernel.Estado {
	return kernel.Estado(s.llamar(kernel.Llamada{Numero: kernel.SysEstado, Args: [3]int32{int32(pid)}}))
}
