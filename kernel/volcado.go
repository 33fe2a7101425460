package kernel

import (
	"errors"
	"fmt"

	"github.com/sisoputnfrba/tp-kernel-didactico/cola"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

type ResumenPCB struct {
	Pid          Pid      `json:"pid"`
	Ppid         Pid      `json:"ppid"`
	Programa     string   `json:"programa"`
	Estado       string   `json:"estado"`
	Hijos        int      `json:"hijos"`
	Quantum      int      `json:"quantum"`
	Despertar    uint64   `json:"despertar,omitempty"`
	EstadoSalida int32    `json:"estado_salida"`
	Metricas     Metricas `json:"metricas"`
}

// Volcado es la foto del kernel que se loguea en un panico y que sirve el
// endpoint de depuracion.
type Volcado struct {
	Tiempo   uint64               `json:"tiempo"`
	Actual   Pid                  `json:"actual"`
	Activos  int                  `json:"activos"`
	Colas    map[string]int       `json:"colas"`
	Procesos []ResumenPCB         `json:"procesos"`
	Memoria  memoria.Estadisticas `json:"memoria"`
}

func largo(c *cola.Cola[*PCB]) int {
	if c == nil {
		return 0
	}
	return c.Largo()
}

func (k *Kernel) Volcado() Volcado {
	v := Volcado{
		Tiempo:  k.tiempo,
		Activos: k.activos,
		Colas: map[string]int{
			"listos":     largo(k.listos),
			"durmientes": largo(k.durmientes),
			"esperando":  largo(k.esperando),
			"zombies":    largo(k.zombies),
		},
	}
	if k.actual != nil {
		v.Actual = k.actual.Pid
	}
	for num, c := range k.canales {
		v.Colas[fmt.Sprintf("canal_%d", num)] = largo(c.bloqueados)
	}
	for i := range k.tabla {
		p := &k.tabla[i]
		if p.Estado == EstadoLibre {
			continue
		}
		v.Procesos = append(v.Procesos, ResumenPCB{
			Pid:          p.Pid,
			Ppid:         p.Ppid,
			Programa:     p.Programa.Nombre,
			Estado:       p.Estado.String(),
			Hijos:        p.Hijos,
			Quantum:      p.Quantum,
			Despertar:    p.Despertar,
			EstadoSalida: p.EstadoSalida,
			Metricas:     p.Metricas,
		})
	}
	if k.mem != nil {
		v.Memoria = k.mem.Estadisticas()
	}
	return v
}

// VerificarInvariantes revisa la consistencia entre la tabla de procesos y
// las colas. Devuelve todas las violaciones juntas.
func (k *Kernel) VerificarInvariantes() error {
	var errs []error
	falla := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	contenedores := map[*cola.Cola[*PCB]]Estado{
		k.listos:     EstadoListo,
		k.durmientes: EstadoDurmiendo,
		k.esperando:  EstadoEsperando,
		k.zombies:    EstadoZombie,
	}
	for _, c := range k.canales {
		contenedores[c.bloqueados] = EstadoBloqueado
	}

	vivos := 0
	hijos := make(map[Pid]int)
	for i := range k.tabla {
		p := &k.tabla[i]
		if p.Estado == EstadoLibre {
			continue
		}
		vivos++
		if p.Pid != PidInit {
			hijos[p.Ppid]++
		}

		apariciones := 0
		if k.actual == p {
			apariciones++
			if p.Estado != EstadoEjecutando {
				falla("pid %d es el actual pero esta %s", p.Pid, p.Estado)
			}
		}
		for c, estado := range contenedores {
			if !c.Contiene(p) {
				continue
			}
			apariciones++
			if p.Estado != estado {
				falla("pid %d esta en la cola de %s pero su estado es %s", p.Pid, estado, p.Estado)
			}
			if p.Cola != c {
				falla("pid %d no tiene registrada la cola que lo contiene", p.Pid)
			}
		}

		if p == k.ocioso {
			if apariciones > 1 || (k.actual != p && (apariciones != 0 || p.Estado != EstadoListo)) {
				falla("el ocioso esta en %d lugares con estado %s", apariciones, p.Estado)
			}
			continue
		}
		if apariciones != 1 {
			falla("pid %d (%s) esta en %d lugares", p.Pid, p.Estado, apariciones)
		}
	}

	if vivos != k.activos {
		falla("hay %d procesos vivos pero activos=%d", vivos, k.activos)
	}
	if vivos+len(k.pcbsLibres) != MaxProcesos {
		falla("la tabla tiene %d vivos y %d libres", vivos, len(k.pcbsLibres))
	}
	for i := range k.tabla {
		p := &k.tabla[i]
		if p.Estado == EstadoLibre || p.Estado == EstadoZombie {
			continue
		}
		if p.Hijos != hijos[p.Pid] {
			falla("pid %d dice tener %d hijos y tiene %d", p.Pid, p.Hijos, hijos[p.Pid])
		}
	}

	var anterior uint64
	for p := range k.durmientes.Todos() {
		if p.Despertar < anterior {
			falla("cola de durmientes desordenada en pid %d", p.Pid)
		}
		anterior = p.Despertar
	}

	return errors.Join(errs...)
}
