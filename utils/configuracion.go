package utils

import (
	"encoding/json"
	"fmt"
	"os"
)

// IniciarConfiguracion decodifica el json de ruta sobre la estructura pasada.
func IniciarConfiguracion[T any](ruta string, estructuraDeConfig *T) error {
	configFile, err := os.Open(ruta)
	if err != nil {
		return fmt.Errorf("error al abrir el archivo de configuracion: %w", err)
	}
	defer configFile.Close()

	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(estructuraDeConfig); err != nil {
		return fmt.Errorf("error al decodificar la configuracion %w", err)
	}
	return nil
}
