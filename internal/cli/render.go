package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/dialogue"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/reply"
)

// RenderResponse styles an engine response for the terminal. The reply kind
// picks the icon and color; the text itself is the engine's.
func RenderResponse(resp dialogue.Response) string {
	icon, style := replyStyle(resp.Metadata)
	return BotStyle.Render(CelenganIcon) + " " + style.Render(icon+" "+resp.Text)
}

// RenderPending describes the action waiting for confirmation, if any.
func RenderPending(lang model.Language, pa *model.PendingAction) string {
	if pa == nil {
		return FormatInfo("Tidak ada catatan yang menunggu konfirmasi.")
	}

	s := pa.Statement
	lines := []string{
		fmt.Sprintf("ID:      %s", pa.ID),
		fmt.Sprintf("Status:  %s", pa.State),
		fmt.Sprintf("Jenis:   %s", s.Intent),
		fmt.Sprintf("Jumlah:  %s", reply.FormatAmount(lang, s.Amount)),
	}
	if label := s.Label(); label != "" {
		lines = append(lines, fmt.Sprintf("Label:   %s", label))
	}
	if s.TargetDate != nil {
		lines = append(lines, fmt.Sprintf("Tanggal: %s", reply.FormatDate(lang, *s.TargetDate)))
	}
	if pa.LastError != "" {
		lines = append(lines, ErrorStyle.Render("Gagal:   "+pa.LastError))
	}

	return RenderBox(PendingIcon+" Menunggu konfirmasi", strings.Join(lines, "\n"))
}
