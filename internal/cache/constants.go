package cache

import (
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
const (
	AuthTokenKey = "auth:token:%s" // key of a bearer token, value is the owning user id
)

func MakeAuthTokenKey(token string) string {
	return fmt.Sprintf(AuthTokenKey, token)
}

// entries expire so a missed delete can only leave a short-lived stale token
const DefaultTokenTTL = 5 * time.Minute

var ErrCacheMiss = errors.New("cache miss")

// lua scripts
var deleteTokensScript = redis.NewScript(`
-- KEYS: auth:token:{token} ...
local n = 0
for i = 1, #KEYS do
    n = n + redis.call("DEL", KEYS[i])
end
return n
`)
