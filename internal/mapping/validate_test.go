// SPDX-License-Identifier: AGPL-3.0-or-later

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Healthy"]
description = "d"

[features."Healthy".user_stories."Story"]
description = "s"
components = ["field.sale_order.x_studio_total"]

[features."Deprecated Feature"]
_deprecated = true

[features."Flat"]
description = "components outside stories"
components = ["field.sale_order.x"]

[features."Flat".user_stories."Empty Story"]
description = "no components"
components = []

[features."Storyless"]
description = "no user_stories entry"
`))
	require.NoError(t, err)

	warnings := Validate(doc)
	assert.Equal(t, []string{
		`feature "Deprecated Feature" is marked as deprecated; consider removing it from the map`,
		`feature "Flat" declares components directly; components must live under user stories`,
		`feature "Flat" user story "Empty Story" has no components`,
		`feature "Storyless" has no user_stories entry; add stories or remove the feature`,
	}, warnings)
}

func TestValidateCleanDocument(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Sales"]
description = "d"

[features."Sales".user_stories."Story"]
description = "s"
components = ["field.sale_order.x_studio_total"]
`))
	require.NoError(t, err)

	assert.Empty(t, Validate(doc))
}
