package dispositivos

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
)

var (
	_ kernel.Dispositivo = (*Consola)(nil)
	_ kernel.Dispositivo = (*Serie)(nil)
	_ kernel.Dispositivo = (*Archivo)(nil)
)

func TestConsola(t *testing.T) {
	var pantalla bytes.Buffer
	c := NuevaConsola(&pantalla)

	buf := make([]byte, 3)
	if _, err := c.Leer(buf); !errors.Is(err, kernel.ErrSinDatos) {
		t.Fatalf("leer sin teclas: %v", err)
	}

	avisos := 0
	c.AvisarEntrada(func() { avisos++ })
	c.Teclear([]byte("hola"))
	c.Teclear(nil)
	if avisos != 1 || c.Pendientes() != 4 {
		t.Errorf("avisos=%d pendientes=%d", avisos, c.Pendientes())
	}

	n, err := c.Leer(buf)
	if err != nil || n != 3 || string(buf) != "hol" {
		t.Errorf("leer = %d %q %v", n, buf, err)
	}
	n, _ = c.Leer(buf)
	if n != 1 || buf[0] != 'a' {
		t.Errorf("segunda lectura = %d %q", n, buf[:n])
	}

	if _, err := c.Escribir([]byte("chau")); err != nil || pantalla.String() != "chau" {
		t.Errorf("pantalla = %q %v", pantalla.String(), err)
	}
	if !c.Bloqueante() {
		t.Error("la consola deberia bloquear")
	}
}

func TestSerie(t *testing.T) {
	tests := []struct {
		nombre     string
		bloqueante bool
	}{
		{nombre: "bloqueante", bloqueante: true},
		{nombre: "no bloqueante", bloqueante: false},
	}
	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			s := NuevaSerie(tt.bloqueante)
			if s.Bloqueante() != tt.bloqueante {
				t.Errorf("Bloqueante() = %v", s.Bloqueante())
			}
			s.Escribir([]byte("ab"))
			s.Escribir([]byte("c"))
			if got := s.Transmitido(); string(got) != "abc" {
				t.Errorf("transmitido = %q", got)
			}
			if got := s.Transmitido(); len(got) != 0 {
				t.Errorf("no se vacio: %q", got)
			}

			s.Recibir([]byte("z"))
			buf := make([]byte, 8)
			if n, err := s.Leer(buf); n != 1 || err != nil {
				t.Errorf("leer = %d %v", n, err)
			}
		})
	}
}

func TestArchivo(t *testing.T) {
	a := NuevoArchivo([]byte("abcdef"))
	buf := make([]byte, 4)

	if n, _ := a.Leer(buf); n != 4 || string(buf) != "abcd" {
		t.Fatalf("leer = %d %q", n, buf)
	}
	if n, _ := a.Escribir([]byte("XYZ")); n != 3 {
		t.Fatalf("escribir = %d", n)
	}
	if got := string(a.Contenido()); got != "abcdXYZ" {
		t.Errorf("contenido = %q", got)
	}
	if n, err := a.Leer(buf); n != 0 || err != nil {
		t.Errorf("al final: %d %v", n, err)
	}

	a.Rebobinar()
	if n, _ := a.Leer(buf); n != 4 || string(buf) != "abcd" {
		t.Errorf("despues de rebobinar = %q", buf[:n])
	}
	if a.Bloqueante() {
		t.Error("el archivo no bloquea")
	}
}
