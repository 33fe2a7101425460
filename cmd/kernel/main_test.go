package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

func configDePrueba() kernel.Config {
	return kernel.Config{TamanioMemoria: 4 << 20}.ConDefectos()
}

func TestMapaEnArchivo(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "mapa.bin")
	if err := escribirMapa([]string{ruta, "0x400000"}); err != nil {
		t.Fatalf("escribirMapa: %v", err)
	}

	cfg := configDePrueba()
	cfg.ArchivoMapa = ruta
	mapa, err := cargarMapa(cfg)
	if err != nil {
		t.Fatalf("cargarMapa: %v", err)
	}
	want := memoria.MapaPorDefecto(4 << 20)
	if len(mapa) != len(want) {
		t.Fatalf("mapa = %+v", mapa)
	}
	for i := range want {
		if mapa[i] != want[i] {
			t.Errorf("region %d = %+v, se esperaba %+v", i, mapa[i], want[i])
		}
	}

	if err := escribirMapa([]string{ruta, "mucho"}); err == nil {
		t.Error("se esperaba error con un tamanio invalido")
	}
	if err := escribirMapa([]string{ruta, "0x10000"}); !errors.Is(err, memoria.ErrTamanioInvalido) {
		t.Errorf("un mapa de 64 KiB deberia rechazarse, err = %v", err)
	}
}

func TestArrancarConMemoriaChica(t *testing.T) {
	cfg := configDePrueba()
	cfg.TamanioMemoria = 64 << 10
	if _, err := arrancar(cfg, &bytes.Buffer{}); !errors.Is(err, memoria.ErrTamanioInvalido) {
		t.Errorf("err = %v", err)
	}
}

func TestArrancarConProgramaDesconocido(t *testing.T) {
	cfg := configDePrueba()
	cfg.ProgramaInicial = "no-existe"
	if _, err := arrancar(cfg, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "no-existe") {
		t.Errorf("err = %v", err)
	}
}

func TestServidorDeDepuracion(t *testing.T) {
	s, err := arrancar(configDePrueba(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("arrancar: %v", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/kernel/volcado", s.atenderVolcado)
	mux.HandleFunc("/kernel/teclado", s.atenderTeclado)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var v kernel.Volcado
	if err := utils.EnviarSolicitudHTTP("GET", srv.URL+"/kernel/volcado", nil, &v); err != nil {
		t.Fatalf("volcado: %v", err)
	}
	if v.Actual != kernel.PidInit || v.Activos != 2 || len(v.Procesos) != 2 {
		t.Errorf("volcado = %+v", v)
	}

	var r map[string]int
	peticion := PeticionTeclado{Canal: kernel.CanalSerie, Texto: "hola"}
	if err := utils.EnviarSolicitudHTTP("POST", srv.URL+"/kernel/teclado", peticion, &r); err != nil {
		t.Fatalf("teclado: %v", err)
	}
	if r["bytes"] != 4 {
		t.Errorf("respuesta = %v", r)
	}
	if got := string(s.serie.Transmitido()); got != "" {
		t.Errorf("la entrada no deberia aparecer en la salida: %q", got)
	}

	peticion.Canal = kernel.CanalArchivo
	if err := utils.EnviarSolicitudHTTP("POST", srv.URL+"/kernel/teclado", peticion, &r); err == nil {
		t.Error("el archivo no deberia aceptar entrada por teclado")
	}
	if err := utils.EnviarSolicitudHTTP("POST", srv.URL+"/kernel/volcado", nil, &v); err == nil {
		t.Error("POST al volcado deberia fallar")
	}
}
