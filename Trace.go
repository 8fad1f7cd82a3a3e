package gxsocket

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"github.com/Gurux/gxcommon-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// tracer writes lifecycle events and data traces to the configured logger.
type tracer struct {
	log   logrus.FieldLogger
	level gxcommon.TraceLevel
	// Printer for localized messages.
	p *message.Printer
}

func newTracer(cfg *Config, fields logrus.Fields) *tracer {
	return &tracer{
		log:   cfg.logger().WithFields(fields),
		level: cfg.Trace,
		p:     message.NewPrinter(cfg.Language),
	}
}

func (t *tracer) debug(fields logrus.Fields, key string, a ...any) {
	t.log.WithFields(fields).Debug(t.p.Sprintf(key, a...))
}

func (t *tracer) info(fields logrus.Fields, key string, a ...any) {
	t.log.WithFields(fields).Info(t.p.Sprintf(key, a...))
}

func (t *tracer) warn(err error, key string, a ...any) {
	t.log.WithError(err).Warn(t.p.Sprintf(key, a...))
}

func (t *tracer) error(err error, key string, a ...any) {
	t.log.WithError(err).Error(t.p.Sprintf(key, a...))
}

// data traces sent or received bytes when the trace level allows it.
func (t *tracer) data(traceType gxcommon.TraceTypes, prefix string, data []byte) {
	if int(t.level) < int(traceType) {
		return
	}
	str, err := gxcommon.ToString(data)
	if err != nil {
		t.log.WithError(err).Trace(prefix + " failed")
		return
	}
	t.log.WithField("bytes", len(data)).Trace(prefix + ": " + str)
}

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.connecting_to", "%s connecting to %s timeout %d ms")
	message.SetString(language.AmericanEnglish, "msg.connected_to", "Connected to %s")
	message.SetString(language.AmericanEnglish, "msg.connect_failed", "connect to %s failed")
	message.SetString(language.AmericanEnglish, "msg.closing_connection", "Closing connection to %s")
	message.SetString(language.AmericanEnglish, "msg.connection_closed", "Connection closed to %s")
	message.SetString(language.AmericanEnglish, "msg.already_closed", "Connection is already closed")
	message.SetString(language.AmericanEnglish, "msg.peer_closed", "%s closed the connection")
	message.SetString(language.AmericanEnglish, "msg.connection_failed", "Connection failed")
	message.SetString(language.AmericanEnglish, "msg.send_failed", "Send to %s failed")
	message.SetString(language.AmericanEnglish, "msg.frame_failed", "Invalid frame from %s")
	message.SetString(language.AmericanEnglish, "msg.listening", "Listening on %s")
	message.SetString(language.AmericanEnglish, "msg.listen_failed", "listen on %s failed")
	message.SetString(language.AmericanEnglish, "msg.accepted", "Accepted connection from %s")
	message.SetString(language.AmericanEnglish, "msg.accept_failed", "Accept failed")
	message.SetString(language.AmericanEnglish, "msg.stopped", "Stopped listening on %s")
	message.SetString(language.AmericanEnglish, "msg.client_removed", "Client %s removed, %d connected")

	// --- German (de) ---
	message.SetString(language.German, "msg.connecting_to", "%s verbindet sich mit %s timeout %d ms")
	message.SetString(language.German, "msg.connected_to", "Verbunden mit %s")
	message.SetString(language.German, "msg.connect_failed", "Verbindung zu %s fehlgeschlagen")
	message.SetString(language.German, "msg.closing_connection", "Verbindung zu %s wird geschlossen")
	message.SetString(language.German, "msg.connection_closed", "Verbindung zu %s wurde geschlossen")
	message.SetString(language.German, "msg.already_closed", "Verbindung ist bereits geschlossen")
	message.SetString(language.German, "msg.peer_closed", "%s hat die Verbindung geschlossen")
	message.SetString(language.German, "msg.connection_failed", "Verbindung fehlgeschlagen")
	message.SetString(language.German, "msg.send_failed", "Senden an %s fehlgeschlagen")
	message.SetString(language.German, "msg.frame_failed", "Ungültiger Rahmen von %s")
	message.SetString(language.German, "msg.listening", "Lauscht auf %s")
	message.SetString(language.German, "msg.listen_failed", "Lauschen auf %s fehlgeschlagen")
	message.SetString(language.German, "msg.accepted", "Verbindung von %s angenommen")
	message.SetString(language.German, "msg.accept_failed", "Annehmen fehlgeschlagen")
	message.SetString(language.German, "msg.stopped", "Lauschen auf %s beendet")
	message.SetString(language.German, "msg.client_removed", "Client %s entfernt, %d verbunden")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.connecting_to", "%s yhdistetään kohteeseen %s timeout %d ms")
	message.SetString(language.Finnish, "msg.connected_to", "Yhdistetty kohteeseen %s")
	message.SetString(language.Finnish, "msg.connect_failed", "Yhteyden muodostus kohteeseen %s epäonnistui")
	message.SetString(language.Finnish, "msg.closing_connection", "Suljetaan yhteys kohteeseen %s")
	message.SetString(language.Finnish, "msg.connection_closed", "Yhteys suljettu kohteeseen %s")
	message.SetString(language.Finnish, "msg.already_closed", "Yhteys on jo suljettu")
	message.SetString(language.Finnish, "msg.peer_closed", "%s sulki yhteyden")
	message.SetString(language.Finnish, "msg.connection_failed", "Yhteyden muodostus epäonnistui")
	message.SetString(language.Finnish, "msg.send_failed", "Lähetys kohteeseen %s epäonnistui")
	message.SetString(language.Finnish, "msg.frame_failed", "Virheellinen kehys kohteesta %s")
	message.SetString(language.Finnish, "msg.listening", "Kuunnellaan osoitetta %s")
	message.SetString(language.Finnish, "msg.listen_failed", "Osoitteen %s kuuntelu epäonnistui")
	message.SetString(language.Finnish, "msg.accepted", "Hyväksytty yhteys kohteesta %s")
	message.SetString(language.Finnish, "msg.accept_failed", "Yhteyden hyväksyminen epäonnistui")
	message.SetString(language.Finnish, "msg.stopped", "Osoitteen %s kuuntelu lopetettu")
	message.SetString(language.Finnish, "msg.client_removed", "Asiakas %s poistettu, %d yhdistettynä")

	// --- Swedish (sv) ---
	message.SetString(language.Swedish, "msg.connecting_to", "%s ansluter till %s timeout %d ms")
	message.SetString(language.Swedish, "msg.connected_to", "Ansluten till %s")
	message.SetString(language.Swedish, "msg.connect_failed", "Anslutning till %s misslyckades")
	message.SetString(language.Swedish, "msg.closing_connection", "Stänger anslutning till %s")
	message.SetString(language.Swedish, "msg.connection_closed", "Anslutning stängd till %s")
	message.SetString(language.Swedish, "msg.already_closed", "Anslutningen är redan stängd")
	message.SetString(language.Swedish, "msg.peer_closed", "%s stängde anslutningen")
	message.SetString(language.Swedish, "msg.connection_failed", "Anslutningen misslyckades")
	message.SetString(language.Swedish, "msg.send_failed", "Sändning till %s misslyckades")
	message.SetString(language.Swedish, "msg.frame_failed", "Ogiltig ram från %s")
	message.SetString(language.Swedish, "msg.listening", "Lyssnar på %s")
	message.SetString(language.Swedish, "msg.listen_failed", "Lyssning på %s misslyckades")
	message.SetString(language.Swedish, "msg.accepted", "Accepterade anslutning från %s")
	message.SetString(language.Swedish, "msg.accept_failed", "Accept misslyckades")
	message.SetString(language.Swedish, "msg.stopped", "Slutade lyssna på %s")
	message.SetString(language.Swedish, "msg.client_removed", "Klient %s borttagen, %d anslutna")

	// --- Spanish (es) ---
	message.SetString(language.Spanish, "msg.connecting_to", "%s conectando a %s timeout %d ms")
	message.SetString(language.Spanish, "msg.connected_to", "Conectado a %s")
	message.SetString(language.Spanish, "msg.connect_failed", "Error al conectar con %s")
	message.SetString(language.Spanish, "msg.closing_connection", "Cerrando conexión con %s")
	message.SetString(language.Spanish, "msg.connection_closed", "Conexión cerrada con %s")
	message.SetString(language.Spanish, "msg.already_closed", "La conexión ya está cerrada")
	message.SetString(language.Spanish, "msg.peer_closed", "%s cerró la conexión")
	message.SetString(language.Spanish, "msg.connection_failed", "Error de conexión")
	message.SetString(language.Spanish, "msg.send_failed", "Error al enviar a %s")
	message.SetString(language.Spanish, "msg.frame_failed", "Trama no válida de %s")
	message.SetString(language.Spanish, "msg.listening", "Escuchando en %s")
	message.SetString(language.Spanish, "msg.listen_failed", "Error al escuchar en %s")
	message.SetString(language.Spanish, "msg.accepted", "Conexión aceptada de %s")
	message.SetString(language.Spanish, "msg.accept_failed", "Error al aceptar")
	message.SetString(language.Spanish, "msg.stopped", "Se dejó de escuchar en %s")
	message.SetString(language.Spanish, "msg.client_removed", "Cliente %s eliminado, %d conectados")

	// --- Estonian (et) ---
	message.SetString(language.Estonian, "msg.connecting_to", "%s ühendatakse sihtkohta %s timeout %d ms")
	message.SetString(language.Estonian, "msg.connected_to", "Ühendatud sihtkohta %s")
	message.SetString(language.Estonian, "msg.connect_failed", "Ühendamine sihtkohta %s ebaõnnestus")
	message.SetString(language.Estonian, "msg.closing_connection", "Suletakse ühendus sihtkohta %s")
	message.SetString(language.Estonian, "msg.connection_closed", "Ühendus suleti sihtkohta %s")
	message.SetString(language.Estonian, "msg.already_closed", "Ühendus on juba suletud")
	message.SetString(language.Estonian, "msg.peer_closed", "%s sulges ühenduse")
	message.SetString(language.Estonian, "msg.connection_failed", "Ühendus ebaõnnestus")
	message.SetString(language.Estonian, "msg.send_failed", "Saatmine sihtkohta %s ebaõnnestus")
	message.SetString(language.Estonian, "msg.frame_failed", "Vigane kaader saatjalt %s")
	message.SetString(language.Estonian, "msg.listening", "Kuulatakse aadressil %s")
	message.SetString(language.Estonian, "msg.listen_failed", "Kuulamine aadressil %s ebaõnnestus")
	message.SetString(language.Estonian, "msg.accepted", "Ühendus vastu võetud saatjalt %s")
	message.SetString(language.Estonian, "msg.accept_failed", "Vastuvõtmine ebaõnnestus")
	message.SetString(language.Estonian, "msg.stopped", "Kuulamine aadressil %s lõpetatud")
	message.SetString(language.Estonian, "msg.client_removed", "Klient %s eemaldatud, %d ühendatud")
}
