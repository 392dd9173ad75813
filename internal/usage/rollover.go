package usage

import "time"

// Окна считаем в UTC, неделя — ISO, с понедельника.

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.UTC().ISOWeek()
	by, bw := b.UTC().ISOWeek()
	return ay == by && aw == bw
}

// apply возвращает статистику после учёта одного взаимодействия.
// prev == nil — первое взаимодействие пользователя.
func apply(prev *Stats, userID int64, responseLen int, tokens int64, now time.Time) Stats {
	if prev == nil {
		return Stats{
			UserID:            userID,
			TotalMessages:     1,
			MessagesToday:     1,
			MessagesThisWeek:  1,
			TokensUsed:        tokens,
			AvgResponseLength: int64(responseLen),
			FirstUsed:         now,
			LastUsed:          now,
			UpdatedAt:         now,
		}
	}

	next := *prev
	next.TotalMessages++
	next.TokensUsed += tokens

	// скользящее среднее длины ответа
	next.AvgResponseLength = (prev.AvgResponseLength*prev.TotalMessages + int64(responseLen)) / next.TotalMessages

	if sameUTCDay(prev.LastUsed, now) {
		next.MessagesToday++
	} else {
		next.MessagesToday = 1
	}
	if sameISOWeek(prev.LastUsed, now) {
		next.MessagesThisWeek++
	} else {
		next.MessagesThisWeek = 1
	}

	next.LastUsed = now
	next.UpdatedAt = now
	return next
}
