package validate

import (
	"fmt"

	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/source"
	"github.com/sirupsen/logrus"
)

// Batch validates every record independently. A malformed record is logged
// and skipped; it never stops the remaining ones. Valid items keep input order.
func Batch(records []Record, target source.Variant) (valid []source.Item, rejected []error) {
	for i, raw := range records {
		item, err := One(raw, target)
		if err != nil {
			err = fmt.Errorf("record %d: %w", i, err)
			rejected = append(rejected, err)
			log.With(logrus.Fields{"variant": target, "index": i, "id": raw["id"]}).Warn(err)
			continue
		}

		valid = append(valid, item)
	}

	return valid, rejected
}
