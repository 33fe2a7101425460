package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sisoputnfrba/tp-kernel-didactico/cpu"
	"github.com/sisoputnfrba/tp-kernel-didactico/dispositivos"
	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
	"github.com/sisoputnfrba/tp-kernel-didactico/programas"
)

// Sistema junta todo lo que arranca el binario.
type Sistema struct {
	kernel  *kernel.Kernel
	cpu     *cpu.CPU
	consola *dispositivos.Consola
	serie   *dispositivos.Serie
	archivo *dispositivos.Archivo
}

func cargarMapa(cfg kernel.Config) ([]memoria.Region, error) {
	if cfg.ArchivoMapa == "" {
		if err := memoria.ValidarTamanio(cfg.TamanioMemoria); err != nil {
			return nil, fmt.Errorf("memory_size: %w", err)
		}
		return memoria.MapaPorDefecto(cfg.TamanioMemoria), nil
	}
	f, err := os.Open(cfg.ArchivoMapa)
	if err != nil {
		return nil, fmt.Errorf("error al abrir el mapa de memoria: %w", err)
	}
	defer f.Close()
	return memoria.LeerMapaBIOS(f)
}

func guardarMapa(ruta string, tamanio uint64) error {
	if err := memoria.ValidarTamanio(tamanio); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := memoria.EscribirMapaBIOS(&buf, memoria.MapaPorDefecto(tamanio)); err != nil {
		return err
	}
	return os.WriteFile(ruta, buf.Bytes(), 0644)
}

// arrancar hace el boot completo: memoria, kernel, dispositivos y CPU.
func arrancar(cfg kernel.Config, pantalla io.Writer) (*Sistema, error) {
	mapa, err := cargarMapa(cfg)
	if err != nil {
		return nil, err
	}
	mem, err := memoria.Nueva(mapa, cfg.CargaKernelDir())
	if err != nil {
		return nil, err
	}

	var inicial kernel.Programa
	if cfg.ProgramaInicial != "" {
		p, ok := programas.Buscar(cfg.ProgramaInicial)
		if !ok {
			return nil, fmt.Errorf("programa inicial desconocido %q, hay: %v", cfg.ProgramaInicial, programas.Nombres())
		}
		inicial = p
	}
	argv := append([]string{cfg.ProgramaInicial}, cfg.ArgumentosIniciales...)

	var contenido []byte
	if cfg.ArchivoCanal != "" {
		if contenido, err = os.ReadFile(cfg.ArchivoCanal); err != nil {
			return nil, fmt.Errorf("error al leer el archivo del canal: %w", err)
		}
	}

	s := &Sistema{
		kernel:  kernel.Nuevo(cfg, mem, programas.NuevoInit(inicial, argv), programas.Ocioso),
		consola: dispositivos.NuevaConsola(pantalla),
		serie:   dispositivos.NuevaSerie(*cfg.SerieBloqueante),
		archivo: dispositivos.NuevoArchivo(contenido),
	}
	for canal, d := range map[kernel.Canal]kernel.Dispositivo{
		kernel.CanalConsola: s.consola,
		kernel.CanalSerie:   s.serie,
		kernel.CanalArchivo: s.archivo,
	} {
		if err := s.kernel.InstalarCanal(canal, d); err != nil {
			return nil, err
		}
	}

	s.cpu = cpu.Nueva(s.kernel)
	s.consola.AvisarEntrada(func() { s.cpu.Interrupcion(kernel.CanalConsola) })
	s.serie.AvisarEntrada(func() { s.cpu.Interrupcion(kernel.CanalSerie) })

	slog.Info("Sistema arrancado", "programa_inicial", cfg.ProgramaInicial, "argv", argv)
	return s, nil
}
