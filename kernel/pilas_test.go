package kernel

import (
	"slices"
	"testing"

	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

func pilaDePrueba() *Pila {
	return &Pila{
		Bloque: memoria.Bloque{Base: 0x200000, Paginas: PaginasPorPila},
		Datos:  make([]byte, TamPila),
	}
}

func TestSembrarPila(t *testing.T) {
	tests := []struct {
		nombre string
		argv   []string
	}{
		{nombre: "sin argumentos", argv: nil},
		{nombre: "solo el nombre", argv: []string{"eco"}},
		{nombre: "varios", argv: []string{"escritor", "x", "25"}},
		{nombre: "cadena vacia", argv: []string{"dormilon", "", "100"}},
	}
	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			pila := pilaDePrueba()
			ctx, err := sembrar(pila, 0x10000, tt.argv)
			if err != nil {
				t.Fatalf("sembrar: %v", err)
			}
			if ctx.EIP != 0x10000 || ctx.EFLAGS != EFLAGSDefecto || ctx.CS != SelectorCodigo || ctx.SS != SelectorPila {
				t.Errorf("contexto inesperado: %+v", ctx)
			}
			if (ctx.ESP+4)%alineacionArgumentos != 0 {
				t.Errorf("bloque de argumentos desalineado: esp=%#x", ctx.ESP)
			}

			argc, argv, err := LeerArgumentos(pila, ctx)
			if err != nil {
				t.Fatalf("LeerArgumentos: %v", err)
			}
			if argc != len(tt.argv) || !slices.Equal(argv, tt.argv) {
				t.Errorf("argc=%d argv=%q", argc, argv)
			}

			guardado, err := ContextoGuardado(pila, ctx)
			if err != nil {
				t.Fatalf("ContextoGuardado: %v", err)
			}
			if guardado != *ctx {
				t.Errorf("contexto en la pila %+v, se esperaba %+v", guardado, *ctx)
			}
		})
	}
}

func TestSembrarLimiteDeArgumentos(t *testing.T) {
	pila := pilaDePrueba()
	// "p\x00" + cadena + NUL justo en el limite
	if _, err := sembrar(pila, 0x10000, []string{"p", relleno(MaxBytesArgumentos - 3)}); err != nil {
		t.Errorf("en el limite: %v", err)
	}
	if _, err := sembrar(pila, 0x10000, []string{"p", relleno(MaxBytesArgumentos - 2)}); err != ErrArgsLargos {
		t.Errorf("pasado el limite: %v", err)
	}
}

func relleno(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestLeerArgumentosRechazaPilaAjena(t *testing.T) {
	pila := pilaDePrueba()
	ctx, err := sembrar(pila, 0x10000, []string{"eco"})
	if err != nil {
		t.Fatal(err)
	}
	otra := *ctx
	otra.ESP = 0x100
	if _, _, err := LeerArgumentos(pila, &otra); err == nil {
		t.Error("se esperaba error con ESP fuera de la pila")
	}

	clear(pila.Datos)
	if _, _, err := LeerArgumentos(pila, ctx); err == nil {
		t.Error("se esperaba error sin trampolin")
	}
}

func TestDireccionesDeTextoPorPrograma(t *testing.T) {
	k := kernelDePrueba(t, Config{})
	a := k.direccionDe(Programa{Nombre: "a"})
	b := k.direccionDe(Programa{Nombre: "b"})
	if a == b || k.direccionDe(Programa{Nombre: "a"}) != a {
		t.Errorf("a=%#x b=%#x", a, b)
	}
	if k.Init().Contexto.EIP != DireccionTexto {
		t.Errorf("init arranca en %#x", k.Init().Contexto.EIP)
	}
}
