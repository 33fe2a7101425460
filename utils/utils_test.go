package utils

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParsearNivel(t *testing.T) {
	tests := []struct {
		nivel string
		want  slog.Level
	}{
		{nivel: "debug", want: slog.LevelDebug},
		{nivel: "INFO", want: slog.LevelInfo},
		{nivel: "warn", want: slog.LevelWarn},
		{nivel: "warning", want: slog.LevelWarn},
		{nivel: "error", want: slog.LevelError},
		{nivel: "cualquiera", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParsearNivel(tt.nivel); got != tt.want {
			t.Errorf("ParsearNivel(%q) = %v, se esperaba %v", tt.nivel, got, tt.want)
		}
	}
}

func TestNuevoLoggerFiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	logger := NuevoLogger(&buf, "kernel", "warn")

	logger.Info("no deberia salir")
	logger.Warn("cola llena", "pid", 3)

	salida := buf.String()
	if strings.Contains(salida, "no deberia salir") {
		t.Errorf("se logueo un info con nivel warn: %q", salida)
	}
	for _, parte := range []string{"cola llena", "pid=3", "modulo=kernel"} {
		if !strings.Contains(salida, parte) {
			t.Errorf("falta %q en %q", parte, salida)
		}
	}
}

func TestIniciarConfiguracion(t *testing.T) {
	type config struct {
		Quantum int      `json:"quantum"`
		Args    []string `json:"initial_args"`
	}

	dir := t.TempDir()
	ruta := filepath.Join(dir, "kernel.json")
	if err := os.WriteFile(ruta, []byte(`{"quantum": 4, "initial_args": ["a", "b"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	var cfg config
	if err := IniciarConfiguracion(ruta, &cfg); err != nil {
		t.Fatalf("IniciarConfiguracion: %v", err)
	}
	if cfg.Quantum != 4 || len(cfg.Args) != 2 {
		t.Errorf("cfg = %+v", cfg)
	}

	if err := IniciarConfiguracion(filepath.Join(dir, "no-existe.json"), &cfg); err == nil {
		t.Error("se esperaba error con un archivo inexistente")
	}

	roto := filepath.Join(dir, "roto.json")
	os.WriteFile(roto, []byte(`{"quantum": `), 0644)
	if err := IniciarConfiguracion(roto, &cfg); err == nil {
		t.Error("se esperaba error con json invalido")
	}
}

func TestEnviarSolicitudHTTP(t *testing.T) {
	type eco struct {
		Texto string `json:"texto"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/falla" {
			http.Error(w, "no", http.StatusInternalServerError)
			return
		}
		var e eco
		DecodificarJSON(r, &e)
		ResponderJSON(w, http.StatusOK, eco{Texto: strings.ToUpper(e.Texto)})
	}))
	defer srv.Close()

	var r eco
	if err := EnviarSolicitudHTTP("POST", srv.URL+"/eco", eco{Texto: "hola"}, &r); err != nil {
		t.Fatalf("EnviarSolicitudHTTP: %v", err)
	}
	if r.Texto != "HOLA" {
		t.Errorf("respuesta = %+v", r)
	}
	if err := EnviarSolicitudHTTP("GET", srv.URL+"/falla", nil, &r); err == nil {
		t.Error("se esperaba error con un 500")
	}
}
