package bundle

import (
	"encoding/json"
	"fmt"

	"github.com/flywave/go3d/quaternion"
	"github.com/flywave/go3d/vec3"
)

// preFlagVersion reports whether the layout predates the per-keyframe
// channel flag byte. Those files always carry all three channels.
func preFlagVersion(version string) bool {
	switch version {
	case "0.1", "0.2", "0.3":
		return true
	}
	return false
}

// loadAnimationBinary parses one clip from the animations section. An empty
// id selects the first clip; otherwise clips are scanned until the id
// matches.
func loadAnimationBinary(b *Bundle, id string) (*AnimationData, error) {
	countPrefixed := false
	switch b.version {
	case "0.1", "0.2", "0.3", "0.4":
		if b.seekToFirstType(refTypeAnimations, "") == nil {
			return nil, fmt.Errorf("%w: animations", ErrSectionNotFound)
		}
		countPrefixed = b.version == "0.3" || b.version == "0.4"
	default:
		refID := ""
		if id != "" {
			refID = id + "animation"
		}
		if b.seekToFirstType(refTypeAnimations, refID) == nil {
			return nil, fmt.Errorf("%w: animations", ErrSectionNotFound)
		}
	}
	r := b.reader

	clipCount := uint32(1)
	if countPrefixed {
		var ok bool
		if clipCount, ok = r.ReadUint32(); !ok {
			return nil, fmt.Errorf("bundle: animations: %w: clip count", ErrTruncated)
		}
	}

	for k := uint32(0); k < clipCount; k++ {
		anim := newAnimationData()

		clipID := r.ReadString()
		duration, ok := r.ReadFloat()
		if !ok {
			return nil, fmt.Errorf("bundle: animation %q: %w: duration", clipID, ErrTruncated)
		}
		anim.Duration = duration

		boneCount, ok := r.ReadUint32()
		if !ok {
			return nil, fmt.Errorf("bundle: animation %q: %w: bone count", clipID, ErrTruncated)
		}
		for i := uint32(0); i < boneCount; i++ {
			boneName := r.ReadString()
			keyCount, ok := r.ReadUint32()
			if !ok {
				return nil, fmt.Errorf("bundle: animation %q: %w: keyframe count", clipID, ErrTruncated)
			}
			for j := uint32(0); j < keyCount; j++ {
				keyTime, ok := r.ReadFloat()
				if !ok {
					return nil, fmt.Errorf("bundle: animation %q: %w: key time", clipID, ErrTruncated)
				}

				hasRotation, hasScale, hasTranslation := true, true, true
				if !preFlagVersion(b.version) {
					flag, ok := r.ReadUint8()
					if !ok {
						return nil, fmt.Errorf("bundle: animation %q: %w: channel flag", clipID, ErrTruncated)
					}
					hasRotation = flag&1 != 0
					hasScale = flag>>1&1 != 0
					hasTranslation = flag>>2&1 != 0
				}

				if hasRotation {
					var q [4]float32
					if !r.ReadFloats(q[:]) {
						return nil, fmt.Errorf("bundle: animation %q: %w: rotation", clipID, ErrTruncated)
					}
					anim.RotationKeys[boneName] = append(anim.RotationKeys[boneName],
						QuatKey{Time: keyTime, Value: quaternion.T{q[0], q[1], q[2], q[3]}})
				}
				if hasScale {
					var s [3]float32
					if !r.ReadFloats(s[:]) {
						return nil, fmt.Errorf("bundle: animation %q: %w: scale", clipID, ErrTruncated)
					}
					anim.ScaleKeys[boneName] = append(anim.ScaleKeys[boneName],
						Vec3Key{Time: keyTime, Value: vec3.T{s[0], s[1], s[2]}})
				}
				if hasTranslation {
					var t [3]float32
					if !r.ReadFloats(t[:]) {
						return nil, fmt.Errorf("bundle: animation %q: %w: translation", clipID, ErrTruncated)
					}
					anim.TranslationKeys[boneName] = append(anim.TranslationKeys[boneName],
						Vec3Key{Time: keyTime, Value: vec3.T{t[0], t[1], t[2]}})
				}
			}
		}

		if id == "" || id == clipID {
			return anim, nil
		}
	}
	return nil, fmt.Errorf("bundle: animation %q not found", id)
}

type jsonKeyframe struct {
	KeyTime     float32   `json:"keytime"`
	Translation []float32 `json:"translation"`
	Rotation    []float32 `json:"rotation"`
	Scale       []float32 `json:"scale"`
}

type jsonAnimationBone struct {
	BoneID    string         `json:"boneId"`
	Keyframes []jsonKeyframe `json:"keyframes"`
}

type jsonAnimation struct {
	ID     string              `json:"id"`
	Length float32             `json:"length"`
	Bones  []jsonAnimationBone `json:"bones"`
}

// loadAnimationJSON parses one clip from the animation list. Channel
// presence follows field presence in each keyframe.
func loadAnimationJSON(b *Bundle, id string) (*AnimationData, error) {
	raw := b.doc.Animations
	if b.version == "1.2" || b.version == "0.2" {
		raw = b.doc.Animation
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: animations", ErrSectionNotFound)
	}

	var clips []jsonAnimation
	if err := json.Unmarshal(raw, &clips); err != nil {
		return nil, fmt.Errorf("bundle: animations: %w", err)
	}
	if len(clips) == 0 {
		return nil, fmt.Errorf("bundle: animations list is empty")
	}

	clip := &clips[0]
	if id != "" {
		clip = nil
		for i := range clips {
			if clips[i].ID == id {
				clip = &clips[i]
				break
			}
		}
		if clip == nil {
			return nil, fmt.Errorf("bundle: animation %q not found", id)
		}
	}

	anim := newAnimationData()
	anim.Duration = clip.Length
	for _, bone := range clip.Bones {
		for _, key := range bone.Keyframes {
			if len(key.Rotation) >= 4 {
				anim.RotationKeys[bone.BoneID] = append(anim.RotationKeys[bone.BoneID],
					QuatKey{Time: key.KeyTime, Value: quaternion.T{key.Rotation[0], key.Rotation[1], key.Rotation[2], key.Rotation[3]}})
			}
			if len(key.Scale) >= 3 {
				anim.ScaleKeys[bone.BoneID] = append(anim.ScaleKeys[bone.BoneID],
					Vec3Key{Time: key.KeyTime, Value: vec3.T{key.Scale[0], key.Scale[1], key.Scale[2]}})
			}
			if len(key.Translation) >= 3 {
				anim.TranslationKeys[bone.BoneID] = append(anim.TranslationKeys[bone.BoneID],
					Vec3Key{Time: key.KeyTime, Value: vec3.T{key.Translation[0], key.Translation[1], key.Translation[2]}})
			}
		}
	}
	return anim, nil
}
