package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// EnviarSolicitudHTTP manda body como json y decodifica la respuesta en respuesta.
func EnviarSolicitudHTTP[T any](method string, url string, body interface{}, respuesta *T) error {
	var requestBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error al serializar JSON: %w", err)
		}
		requestBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, requestBody)
	if err != nil {
		return fmt.Errorf("error creando la solicitud: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error realizando la solicitud: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("respuesta inesperada: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(respuesta); err != nil {
		return fmt.Errorf("error decodificando la respuesta: %w", err)
	}
	return nil
}

// ResponderJSON es el lado servidor de EnviarSolicitudHTTP.
func ResponderJSON(w http.ResponseWriter, status int, cuerpo interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(cuerpo); err != nil {
		LoggerConFormato("Error - (ResponderJSON) - codificando respuesta: %v", err)
	}
}

// DecodificarJSON lee el cuerpo de la peticion sobre destino.
func DecodificarJSON(r *http.Request, destino interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(destino); err != nil {
		return fmt.Errorf("error al deserializar: %w", err)
	}
	return nil
}
