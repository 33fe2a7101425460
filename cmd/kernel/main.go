package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
	"golang.org/x/sync/errgroup"
)

const uso = `Uso:
  kernel <instancia>               arranca con la configuracion <instancia>.json
  kernel volcado <url>             pide el volcado a un kernel corriendo
  kernel mapa <archivo> <tamanio>  escribe un mapa de memoria BIOS por defecto`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(uso)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "volcado":
		err = pedirVolcado(os.Args[2:])
	case "mapa":
		err = escribirMapa(os.Args[2:])
	default:
		err = correr(os.Args[1])
	}
	if err != nil {
		fmt.Println("[main]", err)
		os.Exit(1)
	}
}

func correr(instancia string) error {
	fmt.Println("Iniciando Kernel...")

	var cfg kernel.Config
	ruta_config := fmt.Sprintf("%s.json", instancia)
	if err := utils.IniciarConfiguracion(ruta_config, &cfg); err != nil {
		return err
	}
	cfg = cfg.ConDefectos()

	if err := utils.ConfigurarLogger("kernel", cfg.LogLevel); err != nil {
		return fmt.Errorf("error al configurar logger: %w", err)
	}
	slog.Debug("Configuracion cargada", "instancia", instancia, "config", cfg)

	sistema, err := arrancar(cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancelar := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelar()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sistema.cpu.Ejecutar(ctx) })

	if cfg.PuertoKernel != 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/kernel/volcado", sistema.atenderVolcado)
		mux.HandleFunc("/kernel/teclado", sistema.atenderTeclado)

		servidor := &http.Server{Addr: fmt.Sprintf(":%d", cfg.PuertoKernel), Handler: mux}
		g.Go(func() error {
			slog.Info("Servidor de depuracion escuchando", "puerto", cfg.PuertoKernel)
			if err := servidor.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error al iniciar el servidor HTTP: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return servidor.Shutdown(context.Background())
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		slog.Info("Kernel detenido", "volcado", sistema.cpu.Volcado())
		return nil
	}
	return err
}

func pedirVolcado(args []string) error {
	if len(args) != 1 {
		return errors.New(uso)
	}
	var v kernel.Volcado
	if err := utils.EnviarSolicitudHTTP("GET", args[0]+"/kernel/volcado", nil, &v); err != nil {
		return err
	}
	salida, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(salida))
	return nil
}

func escribirMapa(args []string) error {
	if len(args) != 2 {
		return errors.New(uso)
	}
	tamanio, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return fmt.Errorf("tamanio invalido %q: %w", args[1], err)
	}
	return guardarMapa(args[0], tamanio)
}
