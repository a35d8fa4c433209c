// Package model defines the domain entities shared across the pipeline.
package model

import "time"

// User is the profile every snapshot is anchored to.
type User struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Timezone  string
}
