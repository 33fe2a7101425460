package kernel

import (
	"fmt"

	"github.com/sisoputnfrba/tp-kernel-didactico/cola"
	"github.com/sisoputnfrba/tp-kernel-didactico/memoria"
)

type Pid int32

const (
	// MaxProcesos es la cantidad de entradas de la tabla de procesos.
	MaxProcesos = 32

	PidInit    Pid = 1
	PidOcioso  Pid = 2
	primerPid      = PidInit
	QuantumStd     = 10
)

type Estado int

const (
	EstadoLibre Estado = iota
	EstadoNuevo
	EstadoListo
	EstadoEjecutando
	EstadoDurmiendo
	EstadoEsperando
	EstadoBloqueado
	EstadoZombie
)

var nombresEstados = []string{"UNUSED", "NEW", "READY", "RUNNING", "SLEEPING", "WAITING", "BLOCKED", "ZOMBIE"}

func (e Estado) String() string {
	if e < 0 || int(e) >= len(nombresEstados) {
		return fmt.Sprintf("Estado(%d)", int(e))
	}
	return nombresEstados[e]
}

// Codigo es el valor que recibe un proceso en EAX al volver de una syscall.
// Los negativos son errores.
type Codigo int32

const (
	Exito              Codigo = 0
	ErrFallo           Codigo = -1
	ErrInvalido        Codigo = -2
	ErrCanalInvalido   Codigo = -3
	ErrSinHijos        Codigo = -4
	ErrSinDatos        Codigo = -5
	ErrMaxProcesos     Codigo = -6
	ErrSinMemoria      Codigo = -7
	ErrNoEncontrado    Codigo = -8
	ErrArgsLargos      Codigo = -9
	ErrSyscallInvalida Codigo = -10
	ErrMatado          Codigo = -11
)

var mensajesCodigos = map[Codigo]string{
	Exito:              "exito",
	ErrFallo:           "fallo",
	ErrInvalido:        "parametro invalido",
	ErrCanalInvalido:   "canal invalido",
	ErrSinHijos:        "sin hijos",
	ErrSinDatos:        "sin datos",
	ErrMaxProcesos:     "no hay mas procesos disponibles",
	ErrSinMemoria:      "sin memoria",
	ErrNoEncontrado:    "proceso no encontrado",
	ErrArgsLargos:      "lista de argumentos demasiado larga",
	ErrSyscallInvalida: "syscall invalida",
	ErrMatado:          "proceso matado",
}

func (c Codigo) Error() string {
	if m, ok := mensajesCodigos[c]; ok {
		return m
	}
	return fmt.Sprintf("codigo %d", int32(c))
}

// Estados de terminacion que pone el kernel, distintos de cualquier exit voluntario
// con un valor no negativo.
const (
	SalidaMatado          = int32(ErrMatado)
	SalidaSyscallInvalida = int32(ErrSyscallInvalida)
)

type Canal int32

const (
	CanalConsola Canal = iota
	CanalSerie
	CanalArchivo
)

// Dispositivo es lo que el kernel necesita de un colaborador de E/S.
// Leer devuelve ErrSinDatos cuando no hay nada disponible todavia.
type Dispositivo interface {
	Leer(buf []byte) (int, error)
	Escribir(buf []byte) (int, error)
	Bloqueante() bool
}

// Contexto es el estado del procesador que se guarda en la pila del proceso.
// El orden de los campos es el orden en memoria.
type Contexto struct {
	SS, GS, FS, ES, DS uint32
	EDI, ESI, EBP, ESP uint32
	EBX, EDX, ECX, EAX uint32
	Vector, Codigo     uint32
	EIP, CS, EFLAGS    uint32
}

// Sistema es la interfaz de syscalls que ve un proceso de usuario.
type Sistema interface {
	Salir(estado int32)
	Matar(pid Pid) error
	Esperar(pid Pid) (Pid, int32, error)
	Crear(prog Programa, argv ...string) (Pid, error)
	Leer(canal Canal, buf []byte) (int, error)
	Escribir(canal Canal, buf []byte) (int, error)
	Dormir(ms uint32)
	Tiempo() uint64
	Pid() Pid
	PPid() Pid
	EstadoDe(pid Pid) Estado
}

// Entrada es el cuerpo de un proceso. Volver de Entrada equivale a llamar
// a Salir con el valor devuelto.
type Entrada func(sys Sistema, argc int, argv []string) int32

type Programa struct {
	Nombre  string
	Entrada Entrada
}

type Numero int32

const (
	SysSalir Numero = iota
	SysMatar
	SysEsperar
	SysCrear
	SysLeer
	SysEscribir
	SysDormir
	SysTiempo
	SysPid
	SysPPid
	SysEstado
	CantSyscalls
)

var nombresSyscalls = [CantSyscalls]string{"EXIT", "KILL", "WAIT", "SPAWN", "READ", "WRITE", "SLEEP", "GETTIME", "GETPID", "GETPPID", "GETSTATE"}

func (n Numero) String() string {
	if n < 0 || n >= CantSyscalls {
		return fmt.Sprintf("Syscall(%d)", int32(n))
	}
	return nombresSyscalls[n]
}

// Llamada es una trampa al kernel. Los argumentos enteros van por posicion;
// Buffer, Programa, Argv y Estado hacen de los punteros del ABI.
type Llamada struct {
	Numero   Numero
	Args     [3]int32
	Buffer   []byte
	Programa Programa
	Argv     []string
	Estado   *int32 // destino del estado de salida en wait, puede ser nil
}

type PCB struct {
	Contexto     *Contexto
	Pila         *Pila
	Despertar    uint64
	Cola         *cola.Cola[*PCB]
	EstadoSalida int32
	Pid          Pid
	Ppid         Pid
	Hijos        int
	Estado       Estado
	Quantum      int

	Programa Programa
	Metricas Metricas

	esperaPid     Pid
	destinoEstado *int32
	lectura       *Llamada
	indice        int
}

// Retorno es el valor que dejo la ultima syscall del proceso.
func (p *PCB) Retorno() int32 { return int32(p.Contexto.EAX) }

// Retorno64 junta EDX:EAX, para gettime.
func (p *PCB) Retorno64() uint64 {
	return uint64(p.Contexto.EDX)<<32 | uint64(p.Contexto.EAX)
}

// Config de la instancia, leida del json de configuracion.
type Config struct {
	Quantum             int      `json:"quantum"`
	TicksPorSegundo     int      `json:"ticks_per_second"`
	LogLevel            string   `json:"log_level"`
	PuertoKernel        int      `json:"port_kernel"`
	ArchivoMapa         string   `json:"memory_map_file"`
	TamanioMemoria      uint64   `json:"memory_size"`
	CargaKernel         uint64   `json:"kernel_load_address"`
	ProgramaInicial     string   `json:"initial_program"`
	ArgumentosIniciales []string `json:"initial_args"`
	SerieBloqueante     *bool    `json:"serial_blocking"`
	ArchivoCanal        string   `json:"file_channel"`
}

// ConDefectos completa los valores que quedaron en cero.
func (c Config) ConDefectos() Config {
	if c.Quantum <= 0 {
		c.Quantum = QuantumStd
	}
	if c.TicksPorSegundo <= 0 {
		c.TicksPorSegundo = 1000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TamanioMemoria == 0 {
		c.TamanioMemoria = 32 << 20
	}
	if c.CargaKernel == 0 {
		c.CargaKernel = 0x10000
	}
	if c.SerieBloqueante == nil {
		bloqueante := true
		c.SerieBloqueante = &bloqueante
	}
	return c
}

// CargaKernelDir es la direccion de carga como direccion de memoria.
func (c Config) CargaKernelDir() memoria.Direccion { return memoria.Direccion(c.CargaKernel) }
