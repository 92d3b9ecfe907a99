package service_test

import (
	"github.com/okian/letokens/internal/adapters/mq/queue"
)

func eventJob(user string, version int64) queue.Job {
	return queue.Job{UserID: user, Version: version}
}
