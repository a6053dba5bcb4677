package session

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxMessageRunes is Discord's limit for a single message.
const maxMessageRunes = 2000

// listOverflowReserve keeps room for the "… i jeszcze N" line.
const listOverflowReserve = 32

const (
	commandStart = "rozpoczęcie odbioru"
	commandEnd   = "koniec odbioru"
	commandUndo  = "cofnij"

	slashCommandStatus            = "odbior-status"
	slashCommandStatusDescription = "Pokazuje aktywny odbiór w tym kanale i listę zebranych usterek."

	messageStartAnalyzing   = "Rozpoczynam odbiór... 🧠 Analizuję dane lokalu i firmy..."
	messageStartMissingData = "❌ Nie udało się rozpoznać lokalu lub firmy.\nSpróbuj ponownie, np: 'Rozpoczęcie odbioru, lokal 46/2, firma domhomegroup'."
	messageNothingToEnd     = "Żaden odbiór nie jest aktywny. Aby zakończyć, musisz najpierw go rozpocząć."
	messageIdleText         = "Żaden odbiór nie jest aktywny.\nAby zacząć, napisz np: 'Rozpoczęcie odbioru, lokal 46/2, firma domhomegroup'."
	messageExtractionFailed = "❌ Błąd analizy AI. Spróbuj sformułować wiadomość inaczej."
	messageExtractionDown   = "❌ Usługa analizy AI jest chwilowo niedostępna. Spróbuj ponownie za chwilę."
	messageInternalError    = "❌ Wystąpił nieoczekiwany błąd. Spróbuj ponownie."

	messagePhotoIgnored       = "Wyślij zdjęcie *po* rozpoczęciu odbioru. Teraz ta fotka zostanie zignorowana."
	messagePhotoNeedsCaption  = "❌ Zdjęcie musi mieć opis (usterkę)!\nInaczej nie wiem, co zapisać. Wyślij ponownie z opisem."
	messagePhotoDownloadError = "❌ Wystąpił błąd przy pobieraniu zdjęcia. Wyślij je ponownie."

	messageEntryTooLong = "❌ Opis usterki jest za długi, nie zmieści się w potwierdzeniu. Skróć go i wyślij ponownie."

	messageUndoNothingActive = "Żaden odbiór nie jest aktywny, nie ma czego cofać."
	messageUndoNeedsReply    = "Aby cofnąć wpis, odpowiedz słowem 'cofnij' na potwierdzenie bota."
	messageUndoUnsupported   = "❌ Nie można cofnąć tej wiadomości. Odpowiedz 'cofnij' na potwierdzenie dodania usterki."

	messageVoiceUnsupported = "❌ Wiadomości głosowe nie są obsługiwane. Opisz usterkę tekstem."
	messageVoiceEmpty       = "❌ Nie udało się rozpoznać mowy w nagraniu. Spróbuj ponownie lub opisz usterkę tekstem."

	messageSingleReportProcessing = "Przetwarzam jako pojedyncze zgłoszenie... 🧠"
	messageSingleReportFailed     = "❌ Błąd zapisu do bazy danych (Arkusza). Skontaktuj się z adminem."

	messageEphemeralWrongGuild     = ":warning: **Ta komenda nie działa na tym serwerze.**"
	messageEphemeralUnknownCommand = ":warning: **Nieznana komenda.**"
	messageEphemeralNotActive      = "W tym kanale nie trwa żaden odbiór."
)

func alreadyActiveMessage(unitID string) string {
	return fmt.Sprintf("❌ Odbiór lokalu %s jest już aktywny.\nNajpierw zakończ go pisząc 'Koniec odbioru'.", unitID)
}

func startedMessage(unitID, responsibleParty string) string {
	return fmt.Sprintf("✅ Rozpoczęto odbiór dla:\n\nLokal: %s\nFirma: %s\n\nTeraz wpisuj usterki (tekst lub zdjęcia z opisem). Zakończ pisząc 'Koniec odbioru'.", unitID, responsibleParty)
}

func endedMessage(unitID string, committed, total int, failed []string) string {
	if total == 0 {
		return fmt.Sprintf("✅ Zakończono odbiór dla lokalu %s.\nZapisano 0 z 0 usterek. Nie dodano żadnych usterek.", unitID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Zakończono odbiór.\nZapisano %d z %d usterek dla lokalu %s.", committed, total, unitID)
	if len(failed) > 0 {
		b.WriteString("\n⚠️ Nie udało się zapisać:")
		lines := make([]string, len(failed))
		for i, d := range failed {
			lines[i] = "\n- " + d
		}
		writeCappedLines(&b, lines)
	}
	return b.String()
}

// writeCappedLines appends lines while the message fits in one Discord
// message and summarizes the rest.
func writeCappedLines(b *strings.Builder, lines []string) {
	used := utf8.RuneCountInString(b.String())
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if used+n+listOverflowReserve > maxMessageRunes {
			fmt.Fprintf(b, "\n… i jeszcze %d", len(lines)-i)
			return
		}
		b.WriteString(line)
		used += n
	}
}

func fitsMessage(content string) bool {
	return utf8.RuneCountInString(content) <= maxMessageRunes
}

func photoReceivedMessage(caption string) string {
	return fmt.Sprintf("Otrzymano zdjęcie dla usterki: '%s'. Przetwarzam i wysyłam na Drive...", caption)
}

func driveErrorMessage(err error) string {
	return fmt.Sprintf("❌ Błąd Google Drive: %v", err)
}

func photoFilename(caption, responsibleParty string) string {
	return fmt.Sprintf("%s - %s.jpg", caption, responsibleParty)
}

func undoneMessage(description string, remaining int) string {
	return fmt.Sprintf("↩️ Cofnięto: '%s'\n(Łącznie: %d).", description, remaining)
}

func undoNotFoundMessage(description string) string {
	return fmt.Sprintf("❌ Nie znaleziono wpisu '%s' na liście. Mógł już zostać cofnięty.", description)
}

func undoDeleteFailedMessage(err error) string {
	return fmt.Sprintf("❌ Nie udało się usunąć zdjęcia z Drive: %v\nWpis pozostaje na liście, spróbuj ponownie.", err)
}

func singleReportSavedMessage(unitID, defect, responsibleParty string) string {
	return fmt.Sprintf("✅ Zgłoszenie (pojedyncze) przyjęte i zapisane:\n\nLokal: %s\nUsterka: %s\nPodmiot: %s", unitID, defect, responsibleParty)
}

func statusMessage(snap Snapshot) string {
	if !snap.Active {
		return messageEphemeralNotActive
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Odbiór w toku**\nLokal: %s\nFirma: %s\nUsterki: %d", snap.UnitID, snap.ResponsibleParty, len(snap.Entries))
	lines := make([]string, len(snap.Entries))
	for i, e := range snap.Entries {
		lines[i] = fmt.Sprintf("\n%d. %s", i+1, e.Description)
	}
	writeCappedLines(&b, lines)
	return b.String()
}
