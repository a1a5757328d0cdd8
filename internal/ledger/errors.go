package ledger

import "errors"

// Alan kuralı ihlalleri. Handler katmanı bunları fiber.NewError'a çevirir;
// hiçbiri veritabanında iz bırakmadan döner.
var (
	ErrWorkerNotFound   = errors.New("çalışan bulunamadı")
	ErrNoBalance        = errors.New("çalışanın ödenecek bakiyesi yok")
	ErrInsufficientCash = errors.New("kasadaki nakit bu işlem için yetersiz")
)
