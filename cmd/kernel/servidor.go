package main

import (
	"net/http"

	"github.com/sisoputnfrba/tp-kernel-didactico/kernel"
	"github.com/sisoputnfrba/tp-kernel-didactico/utils"
)

type PeticionTeclado struct {
	Canal kernel.Canal `json:"canal"`
	Texto string       `json:"texto"`
}

func (s *Sistema) atenderVolcado(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "metodo no permitido", http.StatusMethodNotAllowed)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, s.cpu.Volcado())
}

// atenderTeclado carga texto en la consola o en la linea serie, lo que
// dispara la interrupcion del dispositivo.
func (s *Sistema) atenderTeclado(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "metodo no permitido", http.StatusMethodNotAllowed)
		return
	}
	var peticion PeticionTeclado
	if err := utils.DecodificarJSON(r, &peticion); err != nil {
		http.Error(w, "Se recibio un formato incorrecto", http.StatusBadRequest)
		return
	}

	switch peticion.Canal {
	case kernel.CanalConsola:
		s.consola.Teclear([]byte(peticion.Texto))
	case kernel.CanalSerie:
		s.serie.Recibir([]byte(peticion.Texto))
	default:
		http.Error(w, "el canal no recibe entrada", http.StatusBadRequest)
		return
	}
	utils.LoggerConFormato("## Entrada de %d bytes en el canal %d", len(peticion.Texto), peticion.Canal)
	utils.ResponderJSON(w, http.StatusOK, map[string]int{"bytes": len(peticion.Texto)})
}
