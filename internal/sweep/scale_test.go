package sweep

import "testing"

func TestComputeScalesExtremes(t *testing.T) {
	t.Run("square aspect equal spans", func(t *testing.T) {
		got := computeScales(4000, 4000, 1, 1)
		if got.vScale != 8 || got.iScale != 8 {
			t.Fatalf("got v_scale=%d i_scale=%d, want 8,8", got.vScale, got.iScale)
		}
	})

	t.Run("lopsided aspect and spans", func(t *testing.T) {
		got := computeScales(10, 4000, 1, 8)
		if got.vScale < 1 || got.iScale < 1 {
			t.Fatalf("scales must be >= 1, got v=%d i=%d", got.vScale, got.iScale)
		}
		if got.vScale+got.iScale > 16 {
			t.Fatalf("scale sum must be <= 16, got %d", got.vScale+got.iScale)
		}
		if got.iScale >= got.vScale {
			t.Fatalf("want i_scale < v_scale, got i=%d v=%d", got.iScale, got.vScale)
		}
	})
}

func TestComputeScalesInvariant(t *testing.T) {
	for isc := int16(1); isc <= 4095; isc += 137 {
		for voc := int16(1); voc <= 4095; voc += 211 {
			for w := 1; w <= 8; w++ {
				for h := 1; h <= 8; h++ {
					got := computeScales(isc, voc, w, h)
					if got.vScale < 1 || got.iScale < 1 {
						t.Fatalf("isc=%d voc=%d w=%d h=%d: scale below 1: v=%d i=%d", isc, voc, w, h, got.vScale, got.iScale)
					}
					if got.vScale+got.iScale > 16 {
						t.Fatalf("isc=%d voc=%d w=%d h=%d: scale sum %d exceeds 16", isc, voc, w, h, got.vScale+got.iScale)
					}
				}
			}
		}
	}
}
