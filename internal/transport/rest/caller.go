package rest

import (
	"net/http"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
	"github.com/heartmarshall/learnflow-backend/internal/quota"
	"github.com/heartmarshall/learnflow-backend/pkg/ctxutil"
)

// TimezoneHeader carries the caller's IANA timezone for the daily window.
const TimezoneHeader = "X-Client-Timezone"

func callerFromRequest(r *http.Request) domain.Caller {
	ctx := r.Context()
	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		return domain.Caller{UserID: id.String(), DeviceID: ctxutil.DeviceIDFromCtx(ctx)}
	}
	return domain.Caller{DeviceID: ctxutil.DeviceIDFromCtx(ctx), Anonymous: true}
}

func locationFromRequest(r *http.Request, fallback *time.Location) *time.Location {
	return quota.ParseTimezone(r.Header.Get(TimezoneHeader), fallback)
}
