package infrastructure

import (
	"net/http"
	"net/url"
	"strings"

	"hotelReservas/internal/modules/reservations/application/port"
	"hotelReservas/internal/modules/reservations/domain"
)

const resourcePath = "reservations"

type pathBuilder func(domain.ID) (string, error)

type endpoint struct {
	method string
	path   pathBuilder
}

var endpoints = map[string]endpoint{
	port.OpList:              {method: http.MethodGet, path: collectionPath()},
	port.OpCreate:            {method: http.MethodPost, path: collectionPath()},
	port.OpGet:               {method: http.MethodGet, path: detailPath("")},
	port.OpUpdate:            {method: http.MethodPut, path: detailPath("")},
	port.OpCancel:            {method: http.MethodDelete, path: detailPath("")},
	port.OpMarkActive:        {method: http.MethodPost, path: detailPath("marcar_como_activa")},
	port.OpMarkWaiting:       {method: http.MethodPost, path: detailPath("marcar_como_esperando")},
	port.OpRegisterPayment:   {method: http.MethodPost, path: detailPath("registrar_pago")},
	port.OpAddRooms:          {method: http.MethodPost, path: detailPath("agregar_habitaciones")},
	port.OpRooms:             {method: http.MethodGet, path: detailPath("habitaciones")},
	port.OpCheckAvailability: {method: http.MethodPost, path: reportPath("verificar_disponibilidad")},
	port.OpStatistics:        {method: http.MethodGet, path: reportPath("estadisticas")},
	port.OpWaitingList:       {method: http.MethodGet, path: reportPath("esperando_cliente")},
	port.OpActiveStays:       {method: http.MethodGet, path: reportPath("estadias_activas")},
	port.OpExpiredList:       {method: http.MethodGet, path: reportPath("vencidas")},
	port.OpToday:             {method: http.MethodGet, path: reportPath("hoy")},
	port.OpSearch:            {method: http.MethodGet, path: reportPath("buscar")},
	port.OpByDate:            {method: http.MethodGet, path: reportPath("por_fecha")},
	port.OpByDateRange:       {method: http.MethodGet, path: reportPath("por_rango_fechas")},
}

func collectionPath() pathBuilder {
	return func(domain.ID) (string, error) {
		return resourcePath + "/", nil
	}
}

func reportPath(name string) pathBuilder {
	return func(domain.ID) (string, error) {
		return resourcePath + "/" + name + "/", nil
	}
}

// detailPath builds {id}/ or {id}/<action>/ and rejects a blank id.
func detailPath(action string) pathBuilder {
	return func(id domain.ID) (string, error) {
		identifier := strings.TrimSpace(id.String())
		if identifier == "" {
			return "", errMissingID
		}
		path := resourcePath + "/" + url.PathEscape(identifier) + "/"
		if action != "" {
			path += action + "/"
		}
		return path, nil
	}
}
