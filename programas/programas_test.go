package programas

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/sisoputnfrba/tp-kernel-didactico/cpu"
	"github.com/sisoputnfrba/tp-kernel-didactico/dispositivos"
	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

func TestRegistro(t *testing.T) {
	if got, want := Nombres(), []string{"dormilon", "eco", "escritor", "familia"}; !slices.Equal(got, want) {
		t.Errorf("Nombres() = %v, se esperaba %v", got, want)
	}
	if p, ok := Buscar("escritor"); !ok || p.Nombre != "escritor" || p.Entrada == nil {
		t.Errorf("Buscar(escritor) = %+v %v", p, ok)
	}
	for _, nombre := range []string{"init", "ocioso", "nada"} {
		if _, ok := Buscar(nombre); ok {
			t.Errorf("%s no deberia estar registrado", nombre)
		}
	}
}

func TestArgumento(t *testing.T) {
	tests := []struct {
		nombre string
		argv   []string
		want   int
	}{
		{nombre: "presente", argv: []string{"p", "12"}, want: 12},
		{nombre: "faltante", argv: []string{"p"}, want: 5},
		{nombre: "invalido", argv: []string{"p", "doce"}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			if got := argumento(tt.argv, 1, 5); got != tt.want {
				t.Errorf("argumento(%q) = %d", tt.argv, got)
			}
		})
	}
}

func TestInitCosechaAlProgramaInicial(t *testing.T) {
	mem, err := memoria.Nueva(memoria.MapaPorDefecto(4<<20), 0x100000)
	if err != nil {
		t.Fatal(err)
	}
	init := NuevoInit(Escritor, []string{"escritor", "z", "4"})
	k := kernel.Nuevo(kernel.Config{}, mem, init, Ocioso)

	var pantalla bytes.Buffer
	consola := dispositivos.NuevaConsola(&pantalla)
	if err := k.InstalarCanal(kernel.CanalConsola, consola); err != nil {
		t.Fatal(err)
	}
	c := cpu.Nueva(k)
	c.Arrancar()

	limite := time.Now().Add(5 * time.Second)
	for {
		var listo bool
		c.Inspeccionar(func(k *kernel.Kernel) {
			listo = k.Activos() == 2 && k.Init().Estado == kernel.EstadoEsperando
		})
		if listo {
			break
		}
		if time.Now().After(limite) {
			t.Fatalf("init no cosecho al escritor: %+v", c.Volcado())
		}
		time.Sleep(time.Millisecond)
	}

	var salida string
	c.Inspeccionar(func(*kernel.Kernel) { salida = pantalla.String() })
	if salida != "zzzz" {
		t.Errorf("consola = %q", salida)
	}
}
